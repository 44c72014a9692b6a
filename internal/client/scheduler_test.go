package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sjzar/mcpprobe/internal/mcp"
)

func newIdleScheduler() *Scheduler {
	stats := NewStats()
	return NewScheduler(New(NewConn(stats), stats, time.Second))
}

func TestSchedulerCycleCount(t *testing.T) {
	s := newIdleScheduler()

	var cycles int
	s.SetBattery([]ToolTest{
		{Name: "count", Run: func() error { cycles++; return nil }},
	})

	// boundaries at t=0, 100ms, 200ms; none at 300ms since the loop
	// condition is elapsed < duration
	passed, err := s.Run(context.Background(), 300*time.Millisecond, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !passed {
		t.Errorf("Run() verdict = false, want true")
	}
	if cycles != 3 {
		t.Errorf("cycles = %d, want 3", cycles)
	}
}

func TestSchedulerFailureDoesNotAbortCycle(t *testing.T) {
	s := newIdleScheduler()

	var secondRan bool
	s.SetBattery([]ToolTest{
		{Name: "broken", Run: func() error { return errors.New("device said no") }},
		{Name: "fine", Run: func() error { secondRan = true; return nil }},
	})

	passed, err := s.Run(context.Background(), 50*time.Millisecond, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if passed {
		t.Errorf("Run() verdict = true, want false")
	}
	if !secondRan {
		t.Errorf("second tool did not run after first failed")
	}

	outcomes := s.Outcomes()
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[0].Passed || outcomes[0].Detail == "" {
		t.Errorf("first outcome = %+v, want failed with detail", outcomes[0])
	}
	if !outcomes[1].Passed {
		t.Errorf("second outcome = %+v, want passed", outcomes[1])
	}
}

func TestSchedulerRecoversPanic(t *testing.T) {
	s := newIdleScheduler()

	var after bool
	s.SetBattery([]ToolTest{
		{Name: "panics", Run: func() error { panic("boom") }},
		{Name: "after", Run: func() error { after = true; return nil }},
	})

	passed, err := s.Run(context.Background(), 50*time.Millisecond, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if passed {
		t.Errorf("Run() verdict = true, want false")
	}
	if !after {
		t.Errorf("battery stopped after panicking tool")
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("phase = %s, want completed", s.Phase())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := newIdleScheduler()

	s.SetBattery([]ToolTest{
		{Name: "noop", Run: func() error { return nil }},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Run(ctx, 10*time.Second, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Run() did not stop promptly on cancel")
	}
	if s.Phase() != PhaseCompleted {
		t.Errorf("phase after cancel = %s, want completed", s.Phase())
	}
}

// The interactive battery leads with connectivity and tool discovery ahead
// of the four tool tests.
func TestExtendedBattery(t *testing.T) {
	d := newFakeDevice(t, echoHandler)
	defer d.closer()

	c := newTestClient(t, d, time.Second)

	battery := ExtendedBattery(c)
	want := []string{"ping", "list", "echo", "system", "gpio", "display"}
	if len(battery) != len(want) {
		t.Fatalf("battery size = %d, want %d", len(battery), len(want))
	}
	for i, name := range want {
		if battery[i].Name != name {
			t.Errorf("battery[%d] = %s, want %s", i, battery[i].Name, name)
		}
	}

	if err := battery[0].Run(); err != nil {
		t.Fatalf("ping entry error = %v", err)
	}
	if err := battery[1].Run(); err != nil {
		t.Fatalf("list entry error = %v", err)
	}

	d.mu.Lock()
	methods := append([]string(nil), d.methods...)
	d.mu.Unlock()
	if len(methods) != 2 || methods[0] != mcp.MethodPing || methods[1] != mcp.MethodToolsList {
		t.Errorf("device saw methods %v, want [%s %s]", methods, mcp.MethodPing, mcp.MethodToolsList)
	}
}

func TestSchedulerSingleRun(t *testing.T) {
	s := newIdleScheduler()
	s.SetBattery([]ToolTest{{Name: "noop", Run: func() error { return nil }}})

	if s.Phase() != PhaseIdle {
		t.Fatalf("initial phase = %s, want idle", s.Phase())
	}
	if _, err := s.Run(context.Background(), 10*time.Millisecond, 100*time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := s.Run(context.Background(), 10*time.Millisecond, 100*time.Millisecond); err == nil {
		t.Errorf("second Run() succeeded, want error")
	}
}
