// Package monitoring registers the Prometheus metrics of the service.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	MissionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "missions_created_total",
			Help: "Total missions created through intake",
		},
	)

	ReportSections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_sections_saved_total",
			Help: "Total report section saves",
		},
	)

	PDFExports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificate_pdf_exports_total",
			Help: "Total certificate PDF exports",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(MissionsCreated)
	prometheus.MustRegister(ReportSections)
	prometheus.MustRegister(PDFExports)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
