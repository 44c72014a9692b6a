package client

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats accumulates counters across a test run. Counters only grow until an
// explicit Reset at the start of a new run.
type Stats struct {
	sent          atomic.Int64
	received      atomic.Int64
	errors        atomic.Int64
	toolsExecuted atomic.Int64

	mu          sync.Mutex
	startTime   time.Time
	connectedAt time.Time
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) IncSent()          { s.sent.Add(1) }
func (s *Stats) IncReceived()      { s.received.Add(1) }
func (s *Stats) IncErrors()        { s.errors.Add(1) }
func (s *Stats) IncToolsExecuted() { s.toolsExecuted.Add(1) }

// MarkStart records the beginning of a run.
func (s *Stats) MarkStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Now()
}

// MarkConnected records when the connection came up.
func (s *Stats) MarkConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectedAt = time.Now()
}

// Reset clears all counters for a new run.
func (s *Stats) Reset() {
	s.sent.Store(0)
	s.received.Store(0)
	s.errors.Store(0)
	s.toolsExecuted.Store(0)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Time{}
	s.connectedAt = time.Time{}
}

// Snapshot is a point-in-time view with the derived rates. Rates guard
// against zero duration and zero messages, reported as 0 rather than an
// error.
type Snapshot struct {
	Sent          int64
	Received      int64
	Errors        int64
	ToolsExecuted int64
	Duration      time.Duration
	MessageRate   float64 // messages sent per second
	SuccessRate   float64 // (sent - errors) / sent, in percent
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	start := s.startTime
	s.mu.Unlock()

	snap := Snapshot{
		Sent:          s.sent.Load(),
		Received:      s.received.Load(),
		Errors:        s.errors.Load(),
		ToolsExecuted: s.toolsExecuted.Load(),
	}
	if !start.IsZero() {
		snap.Duration = time.Since(start)
	}
	if secs := snap.Duration.Seconds(); secs > 0 {
		snap.MessageRate = float64(snap.Sent) / secs
	}
	if snap.Sent > 0 {
		snap.SuccessRate = float64(snap.Sent-snap.Errors) / float64(snap.Sent) * 100
	}
	return snap
}

// Log writes the run summary.
func (snap Snapshot) Log() {
	log.Info().Msg("=== mcp client statistics ===")
	log.Info().Msgf("  duration: %.1fs", snap.Duration.Seconds())
	log.Info().Msgf("  messages sent: %d", snap.Sent)
	log.Info().Msgf("  messages received: %d", snap.Received)
	log.Info().Msgf("  tools executed: %d", snap.ToolsExecuted)
	log.Info().Msgf("  errors: %d", snap.Errors)
	if snap.Duration > 0 {
		log.Info().Msgf("  message rate: %.2f msg/s", snap.MessageRate)
	}
	if snap.Sent > 0 {
		log.Info().Msgf("  success rate: %.1f%%", snap.SuccessRate)
	}
}
