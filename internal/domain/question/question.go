// Package question holds the calculus question bank records and the
// per-session consumable pool they are drawn from.
package question

import (
	"math/rand"
	"slices"

	"github.com/samber/lo"
)

// MaxLevel is the highest difficulty level in the question bank.
const MaxLevel = 4

// Question is one multiple-choice derivative exercise. The correct
// answer travels separately from the distractors so a shuffled option
// list can always be checked against the original.
type Question struct {
	ID            int64
	LevelID       int
	Statement     string
	CorrectAnswer string
	DistractorB   string
	DistractorC   string
	DistractorD   string
}

// Shuffled is a question's options in randomized order plus the
// unpermuted correct answer for later comparison.
type Shuffled struct {
	Options       []string
	CorrectAnswer string
}

// Shuffle permutes the four options uniformly (back-to-front swaps,
// each position exchanged with a uniformly chosen earlier-or-equal one).
func Shuffle(rng *rand.Rand, q Question) Shuffled {
	options := []string{q.CorrectAnswer, q.DistractorB, q.DistractorC, q.DistractorD}
	for i := len(options) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
	return Shuffled{Options: options, CorrectAnswer: q.CorrectAnswer}
}

// Pool is a session's private, consumable copy of a level's questions.
// Draws remove the chosen question, so no question repeats within a
// session.
type Pool struct {
	rng       *rand.Rand
	questions []Question
}

// NewPool copies qs and shuffles the copy so early draws differ
// between sessions even before any tier filtering applies.
func NewPool(rng *rand.Rand, qs []Question) *Pool {
	copied := slices.Clone(qs)
	rng.Shuffle(len(copied), func(i, j int) {
		copied[i], copied[j] = copied[j], copied[i]
	})
	return &Pool{rng: rng, questions: copied}
}

// Len reports how many questions remain.
func (p *Pool) Len() int {
	return len(p.questions)
}

// DrawFor picks a question suited to an enemy difficulty tier at the
// given level and removes it from the pool. Tier 1 accepts anything;
// tier 2 wants the current level or above; tiers 3 and 4 push one
// level higher; tier 5 only draws from the top level. When the filter
// matches nothing the whole remaining pool is used; when the pool
// itself is empty the second return is false.
func (p *Pool) DrawFor(tier, level int) (Question, bool) {
	if len(p.questions) == 0 {
		return Question{}, false
	}

	filtered := lo.Filter(p.questions, func(q Question, _ int) bool {
		switch tier {
		case 2:
			return q.LevelID >= level
		case 3, 4:
			return q.LevelID >= min(level+1, MaxLevel)
		case 5:
			return q.LevelID == MaxLevel
		default:
			return true
		}
	})
	if len(filtered) == 0 {
		filtered = p.questions
	}

	chosen := filtered[p.rng.Intn(len(filtered))]
	idx := slices.IndexFunc(p.questions, func(q Question) bool { return q.ID == chosen.ID })
	if idx >= 0 {
		p.questions = slices.Delete(p.questions, idx, idx+1)
	}
	return chosen, true
}
