// Package engine contains the wave simulation and per-session state.
// This is the heartbeat of Derivaventura: one Session per player, one
// fixed-rate tick loop per Session, all mutation funneled through the
// session's Runner so no locks are needed inside the game logic.
package engine

import (
	"math/rand"
	"sort"

	"github.com/samber/lo"

	"github.com/derivaventura/server/internal/domain/enemy"
	"github.com/derivaventura/server/internal/domain/level"
	"github.com/derivaventura/server/internal/domain/question"
	"github.com/derivaventura/server/internal/events"
	"github.com/derivaventura/server/internal/platform/logger"
)

// BasePosition is the scalar position at which an enemy breaches the
// base and costs a life.
const BasePosition = 100.0

// spawnOffset is where new enemies start, off-screen to the right.
const spawnOffset = -10.0

// visibleFrom is the position from which an enemy appears in snapshots.
const visibleFrom = -5.0

// bombTargets is how many of the most-advanced enemies one bomb clears.
const bombTargets = 3

// waveScoreBonus is the extra score every enemy of wave n is worth.
const waveScoreBonus = 5

// Config holds the session tuning knobs.
type Config struct {
	InitialLives    int
	MaxOnScreen     int
	FreezeTicks     int
	RestTicks       int
	StartingBombs   int
	StartingFreezes int

	// StrictActiveQuestion restricts answers to the front-most enemy.
	// The later game revisions leave it off, making the active id
	// cosmetic urgency metadata.
	StrictActiveQuestion bool
}

// DefaultConfig mirrors the original game balance.
func DefaultConfig() Config {
	return Config{
		InitialLives:    5,
		MaxOnScreen:     15,
		FreezeTicks:     8,
		RestTicks:       3,
		StartingBombs:   3,
		StartingFreezes: 3,
	}
}

// Outcome is a session's terminal state.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// PowerupKind names a consumable power-up.
type PowerupKind string

const (
	PowerupBomb   PowerupKind = "bomb"
	PowerupFreeze PowerupKind = "freeze"
)

// SessionParams gathers everything a new session needs.
type SessionParams struct {
	PlayerID   int64
	Level      level.Level
	Questions  []question.Question
	Catalog    *enemy.Catalog
	BonusLives int
	Config     Config
	Rng        *rand.Rand
	Logger     *logger.Logger

	// OnBonusLifeConsumed fires once per bonus life spent, so the
	// persisted count can follow. Must not block.
	OnBonusLifeConsumed func()
}

// Session is the aggregate state of one player's run through a level.
// It is confined to its Runner goroutine; only the Runner and tests
// may call its methods.
type Session struct {
	playerID int64
	level    level.Level
	cfg      Config
	rng      *rand.Rand
	log      *logger.Logger

	pool     *question.Pool
	selector *enemy.Selector

	baseLives  int
	bonusLives int
	score      int
	successes  int

	enemies          []*enemy.Enemy
	activeQuestionID int64 // 0 = none

	bombs                int
	freezes              int
	freezeTicksRemaining int
	paused               bool

	waveIndex        int
	spawnedInWave    int
	targetInWave     int
	spawnTickCounter int
	restTicks        int
	waveComplete     bool

	incorrectLog []events.IncorrectAnswer
	outcome      Outcome

	onBonusLifeConsumed func()
}

// NewSession builds a session with its private question pool.
func NewSession(p SessionParams) *Session {
	return &Session{
		playerID:            p.PlayerID,
		level:               p.Level,
		cfg:                 p.Config,
		rng:                 p.Rng,
		log:                 p.Logger,
		pool:                question.NewPool(p.Rng, p.Questions),
		selector:            enemy.NewSelector(p.Catalog, p.Rng),
		baseLives:           p.Config.InitialLives,
		bonusLives:          p.BonusLives,
		bombs:               p.Config.StartingBombs,
		freezes:             p.Config.StartingFreezes,
		onBonusLifeConsumed: p.OnBonusLifeConsumed,
	}
}

// PlayerID returns the owning player.
func (s *Session) PlayerID() int64 { return s.playerID }

// LevelID returns the level being played.
func (s *Session) LevelID() int { return s.level.ID }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Lives is the combined remaining life count.
func (s *Session) Lives() int { return s.baseLives + s.bonusLives }

// Outcome reports the terminal state, OutcomeNone while playing.
func (s *Session) Outcome() Outcome { return s.outcome }

// Terminal reports whether the session has ended.
func (s *Session) Terminal() bool { return s.outcome != OutcomeNone }

// consumeLife spends one life, draining the bonus pool strictly
// before the base pool. Exactly one pool loses exactly one unit.
func (s *Session) consumeLife() {
	if s.bonusLives > 0 {
		s.bonusLives--
		if s.onBonusLifeConsumed != nil {
			s.onBonusLifeConsumed()
		}
		return
	}
	s.baseLives--
}

func (s *Session) stateEvent() events.StateUpdated {
	return events.StateUpdated{
		Lives:     s.Lives(),
		Score:     s.score,
		Successes: s.successes,
		Powerups:  events.Powerups{Bombs: s.bombs, Freezes: s.freezes},
	}
}

// EmitInitialState sends the opening counters to a newly started
// session's client.
func (s *Session) EmitInitialState(sink events.Sink) {
	sink.Emit(s.stateEvent())
}

// Step advances the simulation by one tick. Phases, in order: pause
// and freeze gates, wave bootstrap, spawning, wave completion,
// movement and collision, terminal checks, active-question refresh,
// snapshot broadcast.
func (s *Session) Step(sink events.Sink) {
	if s.paused || s.Terminal() {
		return
	}
	if s.freezeTicksRemaining > 0 {
		s.freezeTicksRemaining--
		return
	}

	s.bootstrapWave(sink)
	s.spawn()
	s.completeWave(sink)
	s.advanceEnemies(sink)
	if s.checkTerminal(sink) {
		return
	}
	s.refreshActiveQuestion(sink)
	s.broadcastSnapshot(sink)
}

// bootstrapWave starts the next wave once the rest period runs out.
func (s *Session) bootstrapWave(sink events.Sink) {
	if s.targetInWave != 0 || s.waveIndex >= len(s.level.Waves) {
		return
	}
	if s.restTicks > 0 {
		s.restTicks--
		return
	}

	wave := s.level.Waves[s.waveIndex]
	s.targetInWave = wave.EnemyCount
	s.spawnedInWave = 0
	s.spawnTickCounter = 0
	s.waveComplete = false

	sink.Emit(events.WaveStarted{
		WaveIndex:    s.waveIndex + 1,
		TotalEnemies: wave.EnemyCount,
	})
}

// spawn advances the spawn-interval counter and creates one enemy
// when it fires and the screen has room. A full screen does not reset
// the counter, so no spawn progress is lost to the cap.
func (s *Session) spawn() {
	if s.targetInWave == 0 || s.spawnedInWave >= s.targetInWave {
		return
	}

	wave := s.level.Waves[s.waveIndex]
	s.spawnTickCounter++
	if s.spawnTickCounter < wave.SpawnIntervalTicks || len(s.enemies) >= s.cfg.MaxOnScreen {
		return
	}
	s.spawnTickCounter = 0

	def := s.selector.SelectType(s.level.ID, s.waveIndex+1)
	q, ok := s.pool.DrawFor(def.DifficultyTier, s.level.ID)
	if !ok {
		// Question starvation: shrink the wave to what already
		// spawned so it can complete instead of stalling.
		if s.log != nil {
			s.log.Warn("question pool exhausted mid-wave %d (%d/%d spawned), force-completing",
				s.waveIndex+1, s.spawnedInWave, s.targetInWave)
		}
		if s.spawnedInWave == 0 {
			// Nothing on the field and nothing to spawn: skip the
			// wave entirely, otherwise it can never complete.
			s.waveIndex++
			s.targetInWave = 0
			return
		}
		s.targetInWave = s.spawnedInWave
		return
	}

	s.enemies = append(s.enemies, &enemy.Enemy{
		ID:         q.ID,
		Question:   q,
		TypeName:   def.Name,
		Speed:      def.BaseSpeed + wave.SpeedBonus,
		ScoreValue: def.ScoreValue + s.waveIndex*waveScoreBonus,
		Position:   spawnOffset,
	})
	s.spawnedInWave++
}

// completeWave closes out a fully spawned, fully cleared wave: grant
// a random power-up, advance the wave index, open the rest window.
func (s *Session) completeWave(sink events.Sink) {
	if s.targetInWave == 0 || s.spawnedInWave < s.targetInWave || len(s.enemies) != 0 || s.waveComplete {
		return
	}
	s.waveComplete = true
	completed := s.waveIndex + 1

	reward := events.RewardBomb
	if s.rng.Intn(2) == 1 {
		reward = events.RewardFreeze
	}
	if reward == events.RewardBomb {
		s.bombs++
	} else {
		s.freezes++
	}

	s.waveIndex++
	s.targetInWave = 0
	s.restTicks = s.cfg.RestTicks

	sink.Emit(events.WaveCompleted{WaveIndex: completed, RewardKind: reward})
	sink.Emit(s.stateEvent())
}

// advanceEnemies moves every enemy and resolves base breaches.
func (s *Session) advanceEnemies(sink events.Sink) {
	for i := len(s.enemies) - 1; i >= 0; i-- {
		e := s.enemies[i]
		e.Position += e.Speed
		if e.Position < BasePosition {
			continue
		}

		s.consumeLife()
		if s.activeQuestionID == e.ID {
			s.activeQuestionID = 0
		}
		s.enemies = append(s.enemies[:i], s.enemies[i+1:]...)

		st := s.stateEvent()
		st.BaseBreached = true
		sink.Emit(st)
	}
}

// mostAdvanced returns the visible enemy closest to the base, nil if
// none is on screen yet.
func (s *Session) mostAdvanced() *enemy.Enemy {
	var front *enemy.Enemy
	for _, e := range s.enemies {
		if e.Position < 0 || e.Position >= BasePosition {
			continue
		}
		if front == nil || e.Position > front.Position {
			front = e
		}
	}
	return front
}

// checkTerminal resolves defeat and victory. Defeat wins ties.
func (s *Session) checkTerminal(sink events.Sink) bool {
	if s.Lives() <= 0 {
		s.outcome = OutcomeDefeat
		sink.Emit(events.Defeat{
			FinalScore:   s.score,
			IncorrectLog: s.incorrectLog,
		})
		return true
	}
	if s.waveIndex >= len(s.level.Waves) && len(s.enemies) == 0 {
		s.outcome = OutcomeVictory
		sink.Emit(events.Victory{
			FinalScore:     s.score,
			WavesCompleted: len(s.level.Waves),
			LevelName:      s.level.Name,
			IncorrectLog:   s.incorrectLog,
		})
		return true
	}
	return false
}

// refreshActiveQuestion broadcasts the front-most enemy's question
// whenever the front changes.
func (s *Session) refreshActiveQuestion(sink events.Sink) {
	front := s.mostAdvanced()
	if front == nil || s.activeQuestionID == front.ID {
		return
	}
	s.activeQuestionID = front.ID

	shuffled := question.Shuffle(s.rng, front.Question)
	sink.Emit(events.QuestionPosed{
		EnemyID:       front.ID,
		Statement:     front.Question.Statement,
		Options:       shuffled.Options,
		CorrectAnswer: shuffled.CorrectAnswer,
		EnemyPosition: front.Position,
	})
}

// broadcastSnapshot emits the visible battlefield.
func (s *Session) broadcastSnapshot(sink events.Sink) {
	visible := lo.FilterMap(s.enemies, func(e *enemy.Enemy, _ int) (events.EnemyState, bool) {
		if e.Position < visibleFrom {
			return events.EnemyState{}, false
		}
		return events.EnemyState{
			ID:        e.ID,
			Position:  max(0, e.Position),
			Statement: e.Question.Statement,
			Speed:     e.Speed,
			TypeName:  e.TypeName,
		}, true
	})

	sink.Emit(events.EnemiesUpdated{
		Enemies:          visible,
		WaveIndex:        min(s.waveIndex+1, len(s.level.Waves)),
		WaveTotal:        len(s.level.Waves),
		RemainingToSpawn: max(0, s.targetInWave-s.spawnedInWave),
		Resting:          s.restTicks > 0,
		LevelName:        s.level.Name,
	})
}

// SubmitAnswer resolves a player's answer for the enemy carrying the
// given question id. Stale ids are ignored: the enemy may already be
// gone to a breach or a bomb, which is an expected race, not an error.
func (s *Session) SubmitAnswer(enemyID int64, chosen string, sink events.Sink) {
	if s.Terminal() {
		return
	}
	idx := -1
	for i, e := range s.enemies {
		if e.ID == enemyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if s.cfg.StrictActiveQuestion && enemyID != s.activeQuestionID {
		return
	}

	e := s.enemies[idx]
	correct := chosen == e.Question.CorrectAnswer

	if correct {
		s.score += e.ScoreValue
		s.successes++
		s.enemies = append(s.enemies[:idx], s.enemies[idx+1:]...)
		if s.activeQuestionID == enemyID {
			s.activeQuestionID = 0
		}
	} else {
		// Final-revision policy: a wrong answer costs a life, the
		// enemy keeps advancing.
		s.consumeLife()
		s.incorrectLog = append(s.incorrectLog, events.IncorrectAnswer{
			Statement:     e.Question.Statement,
			CorrectAnswer: e.Question.CorrectAnswer,
			ChosenText:    chosen,
		})
		if s.activeQuestionID == enemyID {
			s.activeQuestionID = 0
		}
	}

	st := s.stateEvent()
	st.Correct = &correct
	sink.Emit(st)
}

// UseBomb eliminates up to three of the enemies closest to the base,
// scoring each as if answered correctly.
func (s *Session) UseBomb(sink events.Sink) {
	if s.Terminal() || s.bombs <= 0 {
		return
	}
	s.bombs--

	targets := append([]*enemy.Enemy(nil), s.enemies...)
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Position > targets[j].Position
	})
	if len(targets) > bombTargets {
		targets = targets[:bombTargets]
	}

	doomed := make(map[int64]struct{}, len(targets))
	for _, e := range targets {
		doomed[e.ID] = struct{}{}
		s.score += e.ScoreValue
		s.successes++
		if s.activeQuestionID == e.ID {
			s.activeQuestionID = 0
		}
	}
	s.enemies = lo.Filter(s.enemies, func(e *enemy.Enemy, _ int) bool {
		_, hit := doomed[e.ID]
		return !hit
	})

	sink.Emit(events.BombUsed{EliminatedCount: len(targets)})
	sink.Emit(s.stateEvent())
}

// UseFreeze suspends the simulation for the configured tick count.
func (s *Session) UseFreeze(sink events.Sink) {
	if s.Terminal() || s.freezes <= 0 {
		return
	}
	s.freezes--
	s.freezeTicksRemaining = s.cfg.FreezeTicks

	sink.Emit(events.Frozen{DurationTicks: s.freezeTicksRemaining})
	sink.Emit(s.stateEvent())
}

// SetPaused flips the pause flag. While paused, ticks are no-ops:
// movement, spawning, and timers all stand still.
func (s *Session) SetPaused(paused bool) {
	s.paused = paused
}
