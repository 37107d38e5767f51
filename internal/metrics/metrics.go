package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leengari/mdtable/internal/coerce"
	"github.com/leengari/mdtable/internal/engine"
)

// Observer turns engine lifecycle events into Prometheus metrics.
// One Observer may be shared by many engines.
type Observer struct {
	events    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	durations *prometheus.HistogramVec
	rowsOut   prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time // request id + stage -> start time
}

// New registers the metrics with reg. Passing nil uses the default registry.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Observer{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdtable_pipeline_events_total",
				Help: "Total number of pipeline lifecycle events",
			},
			[]string{"event"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdtable_coerce_fallbacks_total",
				Help: "Columns that fell back to CATEGORICAL during inference",
			},
			[]string{"column", "candidate"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdtable_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		rowsOut: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mdtable_filter_rows_out",
				Help:    "Rows kept by each filter",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		started: make(map[string]time.Time),
	}
}

// OnEvent implements engine.Observer
func (o *Observer) OnEvent(event engine.Event) {
	o.events.WithLabelValues(string(event.Type)).Inc()

	switch event.Type {
	case engine.EventFallback:
		if inf, ok := event.Data.(coerce.Inference); ok {
			o.fallbacks.WithLabelValues(inf.Column, string(inf.Candidate)).Inc()
		}
	case engine.EventFilterEnd:
		if m, ok := event.Data.(map[string]interface{}); ok {
			if n, ok := m["rows_out"].(int); ok {
				o.rowsOut.Observe(float64(n))
			}
		}
	case engine.EventError:
		o.forget(event.RequestID)
	}

	stage, phase, ok := splitEvent(event.Type)
	if !ok {
		return
	}
	key := event.RequestID + "/" + stage

	o.mu.Lock()
	defer o.mu.Unlock()
	if phase == "start" {
		o.started[key] = event.Timestamp
		return
	}
	if start, found := o.started[key]; found {
		delete(o.started, key)
		o.durations.WithLabelValues(stage).Observe(event.Timestamp.Sub(start).Seconds())
	}
}

// Pending reports how many stages have started but not finished
func (o *Observer) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.started)
}

// forget drops the open stages of a failed request
func (o *Observer) forget(requestID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	prefix := requestID + "/"
	for key := range o.started {
		if strings.HasPrefix(key, prefix) {
			delete(o.started, key)
		}
	}
}

// splitEvent splits "parse_start" into ("parse", "start")
func splitEvent(t engine.EventType) (stage, phase string, ok bool) {
	s := string(t)
	i := strings.LastIndexByte(s, '_')
	if i < 0 {
		return "", "", false
	}
	phase = s[i+1:]
	if phase != "start" && phase != "end" {
		return "", "", false
	}
	return s[:i], phase, true
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves the metrics of a custom registry
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
