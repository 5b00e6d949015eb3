package dstelemetry

import (
	"testing"
	"time"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()
	m.IncPathsValidated()
	m.IncPathsValidated()
	m.IncErrors(3)
	m.IncAdapterOpens()
	m.IncPluginDispatches()

	counters, _ := m.Snapshot()
	if counters[CounterPathsValidated] != 2 {
		t.Fatalf("paths validated = %d", counters[CounterPathsValidated])
	}
	if counters[CounterErrors] != 3 {
		t.Fatalf("errors = %d", counters[CounterErrors])
	}
	if counters[CounterAdapterOpens] != 1 {
		t.Fatalf("adapter opens = %d", counters[CounterAdapterOpens])
	}
	if counters[CounterPluginDispatches] != 1 {
		t.Fatalf("plugin dispatches = %d", counters[CounterPluginDispatches])
	}
}

func TestHistogramTracksMinMaxSum(t *testing.T) {
	m := New()
	m.ObserveEvaluateDuration(10 * time.Millisecond)
	m.ObserveEvaluateDuration(30 * time.Millisecond)
	m.ObserveEvaluateDuration(20 * time.Millisecond)

	_, hist := m.Snapshot()
	if hist.Count != 3 {
		t.Fatalf("Count = %d", hist.Count)
	}
	if hist.MinMS != 10 {
		t.Fatalf("MinMS = %v", hist.MinMS)
	}
	if hist.MaxMS != 30 {
		t.Fatalf("MaxMS = %v", hist.MaxMS)
	}
	if hist.SumMS != 60 {
		t.Fatalf("SumMS = %v", hist.SumMS)
	}
}
