package engine

import (
	"sync"

	"github.com/derivaventura/server/internal/platform/logger"
)

// Registry is the process-wide mapping from connection identity to a
// session's Runner. It owns every runner's lifecycle; nothing else in
// the process holds ambient session state.
type Registry struct {
	mu      sync.Mutex
	runners map[string]*Runner
	log     *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		runners: make(map[string]*Runner),
		log:     log,
	}
}

// Register installs a runner under the given session id. A previous
// runner under the same id is stopped first; one connection plays one
// session at a time.
func (g *Registry) Register(id string, r *Runner) {
	g.mu.Lock()
	prev := g.runners[id]
	g.runners[id] = r
	g.mu.Unlock()

	if prev != nil {
		if g.log != nil {
			g.log.Warn("session %s: replacing an active run", id)
		}
		prev.Stop()
	}
}

// Get returns the runner for a session id.
func (g *Registry) Get(id string) (*Runner, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runners[id]
	return r, ok
}

// Unregister removes a runner from the registry. Idempotent; the
// runner is only removed if it is still the one registered.
func (g *Registry) Unregister(id string, r *Runner) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.runners[id]; ok && current == r {
		delete(g.runners, id)
	}
}

// Count returns the number of live runners.
func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runners)
}

// ShutdownAll stops every runner and waits for the loops to exit.
func (g *Registry) ShutdownAll() {
	g.mu.Lock()
	runners := make([]*Runner, 0, len(g.runners))
	for _, r := range g.runners {
		runners = append(runners, r)
	}
	g.runners = make(map[string]*Runner)
	g.mu.Unlock()

	for _, r := range runners {
		r.Stop()
	}
	for _, r := range runners {
		r.Wait()
	}
}
