package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHoneypotMetricsObserve(t *testing.T) {
	m := NewHoneypotMetrics(prometheus.NewRegistry())
	m.ObserveMessage("scam_engaged", 0.25)
	m.SetActiveSessions(3)
	m.ObserveSessionCompleted()
	m.ObserveIntelItem("upi_id")
	m.ObserveCallback("success", 1)
}

func TestHoneypotMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHoneypotMetrics(reg)
	m.ObserveCallback("retries_exhausted", 3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered")
	}
}

func TestHoneypotMetricsNilSafe(t *testing.T) {
	var m *HoneypotMetrics
	m.ObserveMessage("error", 0.1)
	m.SetActiveSessions(0)
	m.ObserveSessionCompleted()
	m.ObserveIntelItem("url")
	m.ObserveCallback("success", 1)
}
