package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/derivaventura/server/internal/domain/enemy"
	"github.com/derivaventura/server/internal/domain/level"
	"github.com/derivaventura/server/internal/domain/question"
	"github.com/derivaventura/server/internal/events"
	"github.com/derivaventura/server/internal/platform/logger"
	"github.com/derivaventura/server/internal/platform/metrics"
)

// Errors a start-level request can fail with. They abort that request
// only; no session is created.
var (
	ErrUnknownLevel = errors.New("unknown level")
	ErrNoWaves      = errors.New("level has no configured waves")
	ErrNoQuestions  = errors.New("no questions available for level")
)

// QuestionSource supplies a level's question bank.
type QuestionSource interface {
	QuestionsForLevel(ctx context.Context, levelID int) ([]question.Question, error)
}

// PlayerStore reads and consumes a player's persisted bonus lives.
type PlayerStore interface {
	BonusLives(ctx context.Context, playerID int64) (int, error)
	ConsumeBonusLife(ctx context.Context, playerID int64) error
}

// MatchRecorder appends a finished match record.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, playerID int64, levelID, finalScore int) error
}

/// Engine orchestrates session lifecycles: it loads a level's data,
// spins up a Runner per session, routes inbound events to it, and
// flushes final scores on teardown.
type Engine struct {
	cfg      Config
	tickRate time.Duration
	levels   map[int]level.Level
	catalog  *enemy.Catalog

	questions QuestionSource
	players   PlayerStore
	matches   MatchRecorder

	registry *Registry
	log      *logger.Logger
	metrics  *metrics.Collector

	// newRng is swapped in tests for determinism.
	newRng func() *rand.Rand
}

// New wires an engine from its collaborators.
func New(cfg Config, tickRate time.Duration, levels map[int]level.Level, catalog *enemy.Catalog,
	questions QuestionSource, players PlayerStore, matches MatchRecorder, log *logger.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		tickRate:  tickRate,
		levels:    levels,
		catalog:   catalog,
		questions: questions,
		players:   players,
		matches:   matches,
		registry:  NewRegistry(log),
		log:       log,
		metrics:   metrics.Get(),
		newRng: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Registry exposes the session registry, mainly for tests.
func (e *Engine) Registry() *Registry { return e.registry }

// metricsSink wraps a session's sink to keep the collector current
// without the game logic knowing about metrics.
type metricsSink struct {
	inner     events.Sink
	collector *metrics.Collector
}

func (m metricsSink) Emit(ev events.Event) {
	if st, ok := ev.(events.StateUpdated); ok && st.Correct != nil {
		m.collector.RecordAnswer(*st.Correct)
	}
	m.inner.Emit(ev)
}

// StartLevel creates and starts a session for the given connection
// identity. Configuration errors (unknown level, empty question bank)
// are returned without creating a session.
func (e *Engine) StartLevel(ctx context.Context, sessionID string, playerID int64, levelID int, sink events.Sink) error {
	lvl, ok := e.levels[levelID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
	}
	if len(lvl.Waves) == 0 {
		return fmt.Errorf("%w: %d", ErrNoWaves, levelID)
	}

	qs, err := e.questions.QuestionsForLevel(ctx, levelID)
	if err != nil {
		return fmt.Errorf("loading questions for level %d: %w", levelID, err)
	}
	if len(qs) == 0 {
		return fmt.Errorf("%w: %d", ErrNoQuestions, levelID)
	}

	bonus := 0
	if e.players != nil {
		bonus, err = e.players.BonusLives(ctx, playerID)
		if err != nil {
			// Bonus lives are a perk, not a prerequisite.
			e.log.Warn("player %d: could not load bonus lives: %v", playerID, err)
			bonus = 0
		}
	}

	session := NewSession(SessionParams{
		PlayerID:   playerID,
		Level:      lvl,
		Questions:  qs,
		Catalog:    e.catalog,
		BonusLives: bonus,
		Config:     e.cfg,
		Rng:        e.newRng(),
		Logger:     e.log,
		OnBonusLifeConsumed: func() {
			go e.consumeBonusLife(playerID)
		},
	})

	wrapped := metricsSink{inner: sink, collector: e.metrics}
	runner := NewRunner(sessionID, session, wrapped, e.tickRate, e.log, e.metrics, func(r *Runner) {
		e.teardown(r)
	})
	e.registry.Register(sessionID, runner)
	e.metrics.RecordSessionStart()

	session.EmitInitialState(wrapped)
	go runner.Run()

	e.log.Event("LEVEL_STARTED", sessionID, fmt.Sprintf("player %d level %d (%s)", playerID, levelID, lvl.Name))
	return nil
}

func (e *Engine) consumeBonusLife(playerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.players.ConsumeBonusLife(ctx, playerID); err != nil {
		e.log.Error("player %d: bonus life write failed: %v", playerID, err)
	}
}

// teardown runs once per session, after its loop exits. Terminal
// sessions always flush; interrupted ones flush only a nonzero score.
// The write is best-effort: failures are logged, never retried, never
// surfaced to a client that has already moved on.
func (e *Engine) teardown(r *Runner) {
	s := r.Session()
	e.registry.Unregister(r.ID(), r)
	e.metrics.RecordSessionEnd(s.Outcome() == OutcomeVictory)

	if e.matches == nil {
		return
	}
	if !s.Terminal() && s.Score() == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := e.matches.RecordMatch(ctx, s.PlayerID(), s.LevelID(), s.Score())
		e.metrics.RecordMatchWrite(err)
		if err != nil {
			e.log.Error("session %s: final score write failed: %v", r.ID(), err)
			return
		}
		e.log.Event("MATCH_SAVED", r.ID(), fmt.Sprintf("player %d score %d", s.PlayerID(), s.Score()))
	}()
}

// SubmitAnswer routes an answer to the session, if it still exists.
func (e *Engine) SubmitAnswer(sessionID string, enemyID int64, chosen string) {
	if r, ok := e.registry.Get(sessionID); ok {
		r.SubmitAnswer(enemyID, chosen)
	}
}

// UsePowerup routes a power-up activation.
func (e *Engine) UsePowerup(sessionID string, kind PowerupKind) {
	if r, ok := e.registry.Get(sessionID); ok {
		r.UsePowerup(kind)
	}
}

// SetPaused routes a pause toggle.
func (e *Engine) SetPaused(sessionID string, paused bool) {
	if r, ok := e.registry.Get(sessionID); ok {
		r.SetPaused(paused)
	}
}

// Disconnect tears a session down when its connection goes away.
func (e *Engine) Disconnect(sessionID string) {
	if r, ok := e.registry.Get(sessionID); ok {
		r.Stop()
		// Wait for the loop to exit so no tick can emit into a sink
		// the caller is about to tear down.
		r.Wait()
	}
}

// Shutdown stops every live session.
func (e *Engine) Shutdown() {
	e.registry.ShutdownAll()
}
