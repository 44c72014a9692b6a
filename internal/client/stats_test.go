package client

import (
	"testing"
	"time"
)

func TestStatsCounters(t *testing.T) {
	s := NewStats()
	s.MarkStart()

	for i := 0; i < 10; i++ {
		s.IncSent()
	}
	for i := 0; i < 8; i++ {
		s.IncReceived()
	}
	s.IncErrors()
	s.IncErrors()
	s.IncToolsExecuted()

	snap := s.Snapshot()
	if snap.Sent != 10 || snap.Received != 8 || snap.Errors != 2 || snap.ToolsExecuted != 1 {
		t.Errorf("Snapshot() = %+v, want 10/8/2/1", snap)
	}
	if snap.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", snap.Duration)
	}
	if snap.MessageRate <= 0 {
		t.Errorf("MessageRate = %v, want > 0", snap.MessageRate)
	}
	if snap.SuccessRate != 80 {
		t.Errorf("SuccessRate = %v, want 80", snap.SuccessRate)
	}
}

func TestStatsZeroGuards(t *testing.T) {
	s := NewStats()

	// no start mark, nothing sent: rates report 0, never divide by zero
	snap := s.Snapshot()
	if snap.Duration != 0 {
		t.Errorf("Duration = %v, want 0 before MarkStart", snap.Duration)
	}
	if snap.MessageRate != 0 {
		t.Errorf("MessageRate = %v, want 0", snap.MessageRate)
	}
	if snap.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v, want 0", snap.SuccessRate)
	}
}

func TestStatsReset(t *testing.T) {
	s := NewStats()
	s.MarkStart()
	s.MarkConnected()
	s.IncSent()
	s.IncErrors()

	s.Reset()
	time.Sleep(time.Millisecond)

	snap := s.Snapshot()
	if snap.Sent != 0 || snap.Errors != 0 {
		t.Errorf("Snapshot() after reset = %+v, want zeros", snap)
	}
	if snap.Duration != 0 {
		t.Errorf("Duration after reset = %v, want 0", snap.Duration)
	}
}
