package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK         = "ok"
	ResultError      = "error"
	ResultStale      = "stale"
	ResultSuperseded = "superseded"
)

// Metrics holds the counters shared by the stores. A nil *Metrics records nothing.
type Metrics struct {
	persistWrites *prometheus.CounterVec
	persistLoads  *prometheus.CounterVec
	engineLoads   *prometheus.CounterVec
}

// New registers the store counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	persistWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persist_writes_total",
		Help: "Store snapshot writes by store and outcome.",
	}, []string{"store", "result"})
	persistLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persist_loads_total",
		Help: "Store hydrations by store and outcome.",
	}, []string{"store", "result"})
	engineLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "music_engine_loads_total",
		Help: "Audio engine constructions by outcome.",
	}, []string{"result"})
	reg.MustRegister(persistWrites, persistLoads, engineLoads)
	return &Metrics{
		persistWrites: persistWrites,
		persistLoads:  persistLoads,
		engineLoads:   engineLoads,
	}
}

func (m *Metrics) PersistWrite(store, result string) {
	if m == nil || m.persistWrites == nil {
		return
	}
	m.persistWrites.WithLabelValues(normalizeLabel(store), result).Inc()
}

func (m *Metrics) PersistLoad(store, result string) {
	if m == nil || m.persistLoads == nil {
		return
	}
	m.persistLoads.WithLabelValues(normalizeLabel(store), result).Inc()
}

func (m *Metrics) EngineLoad(result string) {
	if m == nil || m.engineLoads == nil {
		return
	}
	m.engineLoads.WithLabelValues(result).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
