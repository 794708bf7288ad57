package otel

import "testing"

func TestNewMetrics(t *testing.T) {
	// With no provider installed the global meter is a no-op;
	// instrument creation must still succeed.
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if m.EpicsOrchestrated == nil || m.ProcessingTime == nil {
		t.Fatal("expected all instruments to be created")
	}
}
