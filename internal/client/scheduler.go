package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"github.com/rs/zerolog/log"
)

// Phase is the scheduler lifecycle: one run per scheduler.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Outcome records one tool invocation inside a cycle.
type Outcome struct {
	Tool   string
	Passed bool
	Detail string
}

// ToolTest is one entry in the cycle battery.
type ToolTest struct {
	Name string
	Run  func() error
}

// Scheduler repeatedly runs the tool battery at a fixed cadence for a
// bounded duration. A failing tool is recorded and the rest of the cycle
// still runs; only the aggregate verdict reflects it.
type Scheduler struct {
	client  *Client
	battery []ToolTest
	phase   atomic.Int32

	mu       sync.Mutex
	outcomes []Outcome
}

func NewScheduler(client *Client) *Scheduler {
	s := &Scheduler{client: client}
	s.battery = []ToolTest{
		{Name: "echo", Run: func() error { return client.TestEcho("Hello from MCP client!") }},
		{Name: "system", Run: client.TestSystemInfo},
		{Name: "gpio", Run: client.TestGPIO},
		{Name: "display", Run: client.TestDisplay},
	}
	return s
}

// SetBattery replaces the default battery, for the interactive client's
// extended set.
func (s *Scheduler) SetBattery(battery []ToolTest) {
	s.battery = battery
}

// ExtendedBattery is the interactive client's set: connectivity and tool
// discovery checks ahead of the four tool tests.
func ExtendedBattery(client *Client) []ToolTest {
	return []ToolTest{
		{Name: "ping", Run: client.Ping},
		{Name: "list", Run: func() error { _, err := client.ListTools(); return err }},
		{Name: "echo", Run: func() error { return client.TestEcho("Hello from MCP client!") }},
		{Name: "system", Run: client.TestSystemInfo},
		{Name: "gpio", Run: client.TestGPIO},
		{Name: "display", Run: client.TestDisplay},
	}
}

func (s *Scheduler) Phase() Phase {
	return Phase(s.phase.Load())
}

// Outcomes returns a copy of all recorded outcomes.
func (s *Scheduler) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Run executes cycles at interval boundaries while elapsed time stays below
// duration, then reports whether every outcome passed. Cancelled runs still
// return the verdict over the outcomes collected so far, along with the
// context error.
func (s *Scheduler) Run(ctx context.Context, duration, interval time.Duration) (bool, error) {
	if !s.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseRunning)) {
		return false, apperrors.Internal("scheduler already started", nil)
	}
	defer s.phase.Store(int32(PhaseCompleted))

	s.client.Stats().MarkStart()
	log.Info().Msgf("starting comprehensive mcp test suite (duration: %s, interval: %s)", duration, interval)

	start := time.Now()
	end := start.Add(duration)
	next := start

	for now := time.Now(); now.Before(end); now = time.Now() {
		if now.Before(next) {
			wait := next.Sub(now)
			if until := end.Sub(now); until < wait {
				wait = until
			}
			select {
			case <-ctx.Done():
				return s.allPassed(), ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		log.Info().Msgf("running test cycle at %.1fs", now.Sub(start).Seconds())
		s.runCycle(ctx)
		if ctx.Err() != nil {
			return s.allPassed(), ctx.Err()
		}

		// keep boundaries on the interval grid; a cycle overrunning a whole
		// interval skips boundaries instead of bursting to catch up
		for !next.After(time.Now()) {
			next = next.Add(interval)
		}
	}

	return s.allPassed(), nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for _, tt := range s.battery {
		if ctx.Err() != nil {
			return
		}
		out := Outcome{Tool: tt.Name, Passed: true}
		if err := s.runTest(tt); err != nil {
			out.Passed = false
			out.Detail = err.Error()
			log.Error().Err(err).Msgf("%s test failed", tt.Name)
		} else {
			log.Info().Msgf("%s test passed", tt.Name)
		}
		s.record(out)
	}
}

// runTest recovers a panicking test so one defect never ends the run early.
func (s *Scheduler) runTest(tt ToolTest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Internal(fmt.Sprintf("%s test panic: %v", tt.Name, r), nil)
		}
	}()
	return tt.Run()
}

func (s *Scheduler) record(out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, out)
}

func (s *Scheduler) allPassed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.outcomes {
		if !out.Passed {
			return false
		}
	}
	return true
}
