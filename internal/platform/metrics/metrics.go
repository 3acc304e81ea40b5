// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Session metrics
	SessionsActive    int64
	SessionsStarted   int64
	SessionsCompleted int64

	// Answer metrics
	AnswersCorrect   int64
	AnswersIncorrect int64

	// Match persistence
	MatchesWritten   int64
	MatchWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordSessionStart records a new game session.
func (c *Collector) RecordSessionStart() {
	atomic.AddInt64(&c.SessionsActive, 1)
	atomic.AddInt64(&c.SessionsStarted, 1)
}

// RecordSessionEnd records a session reaching a terminal state or teardown.
func (c *Collector) RecordSessionEnd(completed bool) {
	atomic.AddInt64(&c.SessionsActive, -1)
	if completed {
		atomic.AddInt64(&c.SessionsCompleted, 1)
	}
}

// RecordAnswer records an answer submission outcome.
func (c *Collector) RecordAnswer(correct bool) {
	if correct {
		atomic.AddInt64(&c.AnswersCorrect, 1)
	} else {
		atomic.AddInt64(&c.AnswersIncorrect, 1)
	}
}

// RecordMatchWrite records a final-score persistence attempt.
func (c *Collector) RecordMatchWrite(err error) {
	atomic.AddInt64(&c.MatchesWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.MatchWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"sessions": map[string]interface{}{
			"active":    atomic.LoadInt64(&c.SessionsActive),
			"started":   atomic.LoadInt64(&c.SessionsStarted),
			"completed": atomic.LoadInt64(&c.SessionsCompleted),
		},

		"answers": map[string]interface{}{
			"correct":   atomic.LoadInt64(&c.AnswersCorrect),
			"incorrect": atomic.LoadInt64(&c.AnswersIncorrect),
		},

		"matches": map[string]interface{}{
			"written": atomic.LoadInt64(&c.MatchesWritten),
			"errors":  atomic.LoadInt64(&c.MatchWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP derivaventura_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE derivaventura_tick_count counter\n")
		fmt.Fprintf(w, "derivaventura_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP derivaventura_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE derivaventura_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "derivaventura_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP derivaventura_sessions_active Active game sessions\n")
		fmt.Fprintf(w, "# TYPE derivaventura_sessions_active gauge\n")
		fmt.Fprintf(w, "derivaventura_sessions_active %d\n\n", atomic.LoadInt64(&c.SessionsActive))

		fmt.Fprintf(w, "# HELP derivaventura_answers_total Total answer submissions\n")
		fmt.Fprintf(w, "# TYPE derivaventura_answers_total counter\n")
		fmt.Fprintf(w, "derivaventura_answers_total{result=\"correct\"} %d\n", atomic.LoadInt64(&c.AnswersCorrect))
		fmt.Fprintf(w, "derivaventura_answers_total{result=\"incorrect\"} %d\n\n", atomic.LoadInt64(&c.AnswersIncorrect))

		fmt.Fprintf(w, "# HELP derivaventura_matches_written Total match records persisted\n")
		fmt.Fprintf(w, "# TYPE derivaventura_matches_written counter\n")
		fmt.Fprintf(w, "derivaventura_matches_written %d\n\n", atomic.LoadInt64(&c.MatchesWritten))

		fmt.Fprintf(w, "# HELP derivaventura_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE derivaventura_ws_connections gauge\n")
		fmt.Fprintf(w, "derivaventura_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP derivaventura_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE derivaventura_ws_messages_total counter\n")
		fmt.Fprintf(w, "derivaventura_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "derivaventura_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
