package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/derivaventura/server/internal/domain/enemy"
	"github.com/derivaventura/server/internal/domain/level"
	"github.com/derivaventura/server/internal/events"
)

// lockedSink is a recordingSink safe for the runner goroutine.
type lockedSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *lockedSink) Emit(e events.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *lockedSink) count(t events.Type) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.EventType() == t {
			n++
		}
	}
	return n
}

func newTestRunner(t *testing.T, id string, cfg Config, onFinished func(*Runner)) (*Runner, *lockedSink) {
	t.Helper()
	s := newTestSession(cfg, testLevel(level.WaveDef{EnemyCount: 1, SpawnIntervalTicks: 1}),
		testQuestions(2), testCatalog(t), 0, nil)
	sink := &lockedSink{}
	return NewRunner(id, s, sink, time.Millisecond, nil, nil, onFinished), sink
}

func TestRunnerStopsOnTerminalSession(t *testing.T) {
	finished := make(chan *Runner, 1)
	cfg := testConfig()
	cfg.InitialLives = 1
	r, sink := newTestRunner(t, "S1", cfg, func(r *Runner) { finished <- r })

	// Plant an enemy one tick away from the base so the loop dies fast.
	r.Session().enemies = append(r.Session().enemies, testEnemyAt(99.5))
	r.Session().targetInWave = 1
	r.Session().spawnedInWave = 1

	go r.Run()

	select {
	case got := <-finished:
		if got != r {
			t.Error("Expected the finished callback to receive its own runner")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Runner did not finish after the session became terminal")
	}
	r.Wait()

	if r.Session().Outcome() != OutcomeDefeat {
		t.Errorf("Expected defeat, got outcome %v", r.Session().Outcome())
	}
	if sink.count(events.TypeDefeat) != 1 {
		t.Errorf("Expected one DEFEAT event, got %d", sink.count(events.TypeDefeat))
	}
}

func TestRunnerStopTriggersFinishOnce(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	r, _ := newTestRunner(t, "S2", testConfig(), func(*Runner) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	go r.Run()
	r.Stop()
	r.Stop()
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("Expected the finished callback exactly once, got %d calls", calls)
	}
}

func TestRunnerAppliesQueuedCommands(t *testing.T) {
	r, sink := newTestRunner(t, "S3", testConfig(), nil)
	r.Session().enemies = append(r.Session().enemies, testEnemyAt(50))
	r.Session().targetInWave = 1
	r.Session().spawnedInWave = 1

	go r.Run()
	r.UsePowerup(PowerupFreeze)

	deadline := time.After(2 * time.Second)
	for sink.count(events.TypeFrozen) == 0 {
		select {
		case <-deadline:
			t.Fatal("Freeze command was never applied")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	r.Stop()
	r.Wait()
}

func testEnemyAt(pos float64) *enemy.Enemy {
	q := testQuestions(1)[0]
	return &enemy.Enemy{
		ID:         q.ID,
		Question:   q,
		TypeName:   "Zombie Normal",
		Speed:      1,
		ScoreValue: 10,
		Position:   pos,
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(nil)
	r1, _ := newTestRunner(t, "A", testConfig(), nil)
	r2, _ := newTestRunner(t, "A", testConfig(), nil)

	reg.Register("A", r1)
	if got, ok := reg.Get("A"); !ok || got != r1 {
		t.Fatal("Expected to get back the registered runner")
	}
	if reg.Count() != 1 {
		t.Errorf("Expected 1 registered runner, got %d", reg.Count())
	}

	// Registering a second run under the same id replaces the first.
	go r1.Run()
	reg.Register("A", r2)
	r1.Wait()
	if got, _ := reg.Get("A"); got != r2 {
		t.Error("Expected the replacement runner under the id")
	}

	// Unregister is identity-checked: the stale runner cannot evict the
	// current one.
	reg.Unregister("A", r1)
	if _, ok := reg.Get("A"); !ok {
		t.Error("Expected a stale unregister to be ignored")
	}
	reg.Unregister("A", r2)
	if _, ok := reg.Get("A"); ok {
		t.Error("Expected the runner to be unregistered")
	}
}

func TestRegistryShutdownAll(t *testing.T) {
	reg := NewRegistry(nil)
	r1, _ := newTestRunner(t, "A", testConfig(), nil)
	r2, _ := newTestRunner(t, "B", testConfig(), nil)
	reg.Register("A", r1)
	reg.Register("B", r2)
	go r1.Run()
	go r2.Run()

	reg.ShutdownAll()

	if reg.Count() != 0 {
		t.Errorf("Expected an empty registry after shutdown, got %d runners", reg.Count())
	}
}
