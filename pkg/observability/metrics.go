package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "lattice"

// Metrics records compile and recognition outcomes.
type Metrics struct {
	registry *prometheus.Registry

	grammars        *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	recognitions    *prometheus.CounterVec
	recognizeTime   *prometheus.HistogramVec
}

// New creates Metrics registered on a private registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		grammars: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "grammars_compiled_total",
				Help:      "Grammar compilations by outcome.",
			},
			[]string{"grammar", "status"},
		),
		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "grammar_compile_duration_seconds",
				Help:      "Time spent compiling one grammar.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"grammar"},
		),
		recognitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "recognitions_total",
				Help:      "Recognized utterances by mode and outcome.",
			},
			[]string{"mode", "status"},
		),
		recognizeTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "recognition_duration_seconds",
				Help:      "Time spent recognizing one utterance.",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"mode"},
		),
	}
	m.registry.MustRegister(
		m.grammars,
		m.compileDuration,
		m.recognitions,
		m.recognizeTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// GrammarCompiled implements compiler.Observer.
func (m *Metrics) GrammarCompiled(grammar string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.grammars.WithLabelValues(grammar, status).Inc()
	m.compileDuration.WithLabelValues(grammar).Observe(elapsed.Seconds())
}

// Recognized implements recognizer.Observer.
func (m *Metrics) Recognized(mode string, recognized bool, elapsed time.Duration) {
	status := "match"
	if !recognized {
		status = "miss"
	}
	m.recognitions.WithLabelValues(mode, status).Inc()
	m.recognizeTime.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
