// Package metrics exposes ingestion counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fabtrack"

// Ingestion implements project.Recorder.
type Ingestion struct {
	registry *prometheus.Registry

	rowsIngested   prometheus.Counter
	rowsDefaulted  prometheus.Counter
	uploads        *prometheus.CounterVec
	storedProjects prometheus.Gauge
}

// New registers the ingestion collectors, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Ingestion {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Ingestion{
		registry: reg,
		rowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Spreadsheet rows turned into project records.",
		}),
		rowsDefaulted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_defaulted_total",
			Help:      "Ingested rows where at least one field fell back to its default.",
		}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads by outcome.",
		}, []string{"outcome"}),
		storedProjects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_projects",
			Help:      "Projects in the store after the last ingestion.",
		}),
	}
}

func (m *Ingestion) Ingested(rows, defaultedRows, total int) {
	m.rowsIngested.Add(float64(rows))
	m.rowsDefaulted.Add(float64(defaultedRows))
	m.uploads.WithLabelValues("ok").Inc()
	m.storedProjects.Set(float64(total))
}

func (m *Ingestion) DecodeFailed() {
	m.uploads.WithLabelValues("decode_error").Inc()
}

func (m *Ingestion) PersistFailed() {
	m.uploads.WithLabelValues("persist_error").Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Ingestion) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
