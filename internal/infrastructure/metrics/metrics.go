// Package metrics expone contadores Prometheus del motor de auditoría.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
)

const namespace = "inventario_audit"

var _ audit.Metrics = (*Collector)(nil)

// Collector agrupa los contadores y su registro.
type Collector struct {
	registry     *prometheus.Registry
	scans        *prometheus.CounterVec
	importRows   *prometheus.CounterVec
	imports      *prometheus.CounterVec
	persistFails *prometheus.CounterVec
	httpRequests *prometheus.HistogramVec
}

// New crea un registro propio (no el global) con los colectores del proceso y de Go.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Escaneos procesados por estado final.",
		}, []string{"state"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Importaciones completadas por tipo.",
		}, []string{"kind"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Filas leídas en importaciones por tipo.",
		}, []string{"kind"}),
		persistFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Fallos del colaborador de persistencia por operación.",
		}, []string{"op"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de peticiones HTTP por ruta, método y código.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.scans, c.imports, c.importRows, c.persistFails, c.httpRequests,
	)
	return c
}

// ScanCompleted implementa audit.Metrics.
func (c *Collector) ScanCompleted(state string) {
	c.scans.WithLabelValues(state).Inc()
}

// ImportCompleted implementa audit.Metrics.
func (c *Collector) ImportCompleted(kind string, rows int) {
	c.imports.WithLabelValues(kind).Inc()
	c.importRows.WithLabelValues(kind).Add(float64(rows))
}

// PersistenceFailed implementa audit.Metrics.
func (c *Collector) PersistenceFailed(op string) {
	c.persistFails.WithLabelValues(op).Inc()
}

// ObserveRequest registra la duración de una petición HTTP.
func (c *Collector) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry devuelve el registro (tests y exportadores adicionales).
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler expone el registro en formato de texto Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
