package engine

import (
	"sync"
	"time"

	"github.com/derivaventura/server/internal/events"
	"github.com/derivaventura/server/internal/platform/logger"
	"github.com/derivaventura/server/internal/platform/metrics"
)

// command is one queued session mutation. Ticks and commands share a
// single ordered queue per session, so nothing inside the game logic
// ever races: events apply in arrival order, interleaved with ticks.
type command interface{ isCommand() }

type answerCmd struct {
	enemyID int64
	chosen  string
}

type powerupCmd struct {
	kind PowerupKind
}

type pauseCmd struct {
	paused bool
}

func (answerCmd) isCommand()  {}
func (powerupCmd) isCommand() {}
func (pauseCmd) isCommand()   {}

// commandBuffer bounds how many player actions can queue ahead of the
// tick loop before extras are dropped.
const commandBuffer = 64

// Runner owns one Session: it runs the fixed-rate tick loop and
// applies inbound commands, all on a single goroutine.
type Runner struct {
	id       string
	session  *Session
	sink     events.Sink
	tickRate time.Duration
	log      *logger.Logger
	metrics  *metrics.Collector

	cmds chan command
	stop chan struct{}
	done chan struct{}

	stopOnce  sync.Once
	flushOnce sync.Once

	// onFinished runs exactly once, after the loop exits, whether the
	// session ended in victory, defeat, or a disconnect.
	onFinished func(r *Runner)
}

// NewRunner wires a session to its tick loop. Call Run in a goroutine.
func NewRunner(id string, session *Session, sink events.Sink, tickRate time.Duration,
	log *logger.Logger, collector *metrics.Collector, onFinished func(*Runner)) *Runner {
	return &Runner{
		id:         id,
		session:    session,
		sink:       sink,
		tickRate:   tickRate,
		log:        log,
		metrics:    collector,
		cmds:       make(chan command, commandBuffer),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		onFinished: onFinished,
	}
}

// ID returns the runner's session identifier.
func (r *Runner) ID() string { return r.id }

// Session exposes the owned session. Safe to read only after Wait.
func (r *Runner) Session() *Session { return r.session }

// Run is the session's event loop. It exits when the session reaches
// a terminal state or Stop is called.
func (r *Runner) Run() {
	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-r.stop:
			r.finish()
			return
		case cmd := <-r.cmds:
			r.safeApply(cmd)
		case <-ticker.C:
			start := time.Now()
			r.safeStep()
			if r.metrics != nil {
				r.metrics.RecordTick(time.Since(start))
			}
		}

		if r.session.Terminal() {
			r.finish()
			return
		}
	}
}

// safeStep runs one tick with a recover guard: a panic inside a step
// is contained to that step so the loop never halts (the session logs
// an anomaly and keeps ticking).
func (r *Runner) safeStep() {
	defer r.recoverStep("tick")
	r.session.Step(r.sink)
}

func (r *Runner) safeApply(cmd command) {
	defer r.recoverStep("command")
	switch c := cmd.(type) {
	case answerCmd:
		r.session.SubmitAnswer(c.enemyID, c.chosen, r.sink)
	case powerupCmd:
		switch c.kind {
		case PowerupBomb:
			r.session.UseBomb(r.sink)
		case PowerupFreeze:
			r.session.UseFreeze(r.sink)
		}
	case pauseCmd:
		r.session.SetPaused(c.paused)
	}
}

func (r *Runner) recoverStep(where string) {
	if rec := recover(); rec != nil && r.log != nil {
		r.log.Error("session %s: panic in %s step contained: %v", r.id, where, rec)
	}
}

func (r *Runner) finish() {
	r.flushOnce.Do(func() {
		if r.onFinished != nil {
			r.onFinished(r)
		}
	})
}

// enqueue drops the command rather than block the caller (usually a
// websocket read loop) when the session queue is full.
func (r *Runner) enqueue(cmd command) {
	select {
	case r.cmds <- cmd:
	default:
		if r.log != nil {
			r.log.Warn("session %s: command queue full, dropping %T", r.id, cmd)
		}
	}
}

// SubmitAnswer queues an answer submission.
func (r *Runner) SubmitAnswer(enemyID int64, chosen string) {
	r.enqueue(answerCmd{enemyID: enemyID, chosen: chosen})
}

// UsePowerup queues a power-up activation.
func (r *Runner) UsePowerup(kind PowerupKind) {
	r.enqueue(powerupCmd{kind: kind})
}

// SetPaused queues a pause toggle.
func (r *Runner) SetPaused(paused bool) {
	r.enqueue(pauseCmd{paused: paused})
}

// Stop asks the loop to exit. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Wait blocks until the loop has exited.
func (r *Runner) Wait() {
	<-r.done
}
