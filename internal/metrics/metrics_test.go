package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PersistWrite("theme-mode", ResultOK)
	m.PersistWrite("theme-mode", ResultOK)
	m.PersistWrite("", ResultError)
	m.EngineLoad(ResultSuperseded)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "persist_writes_total", map[string]string{"store": "theme-mode", "result": ResultOK}); err != nil {
		t.Fatalf("fetch writes: %v", err)
	} else if got != 2 {
		t.Fatalf("persist_writes_total{ok} = %v, want 2", got)
	}
	if got, err := counterValue(mfs, "persist_writes_total", map[string]string{"store": "unknown", "result": ResultError}); err != nil {
		t.Fatalf("fetch errors: %v", err)
	} else if got != 1 {
		t.Fatalf("persist_writes_total{error} = %v, want 1", got)
	}
	if got, err := counterValue(mfs, "music_engine_loads_total", map[string]string{"result": ResultSuperseded}); err != nil {
		t.Fatalf("fetch engine loads: %v", err)
	} else if got != 1 {
		t.Fatalf("music_engine_loads_total = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.PersistWrite("x", ResultOK)
	m.PersistLoad("x", ResultOK)
	m.EngineLoad(ResultOK)

	New(nil).PersistWrite("x", ResultOK)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %s%v not found", name, labels)
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, pair := range pairs {
		if want[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}
