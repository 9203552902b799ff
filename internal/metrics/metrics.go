package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
	LinksExtracted      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"route", "method"},
		),
		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_extractions_total",
				Help: "Document extractions by file type and outcome",
			},
			[]string{"file_type", "outcome"},
		),
		ExtractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_extraction_duration_seconds",
				Help:    "Time spent extracting text and links from a document",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"file_type"},
		),
		LinksExtracted: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_links_extracted",
				Help:    "Number of distinct links found per document",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"file_type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ExtractionsTotal,
		m.ExtractionDuration,
		m.LinksExtracted,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FileTypeLabel maps a declared content type onto a fixed label set so
// clients cannot create new series.
func FileTypeLabel(contentType string) string {
	switch contentType {
	case "application/pdf":
		return FileTypePDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FileTypeDOCX
	}
	return FileTypeOther
}

// ObserveExtraction records one extraction attempt for a declared content type.
func (m *Metrics) ObserveExtraction(contentType, outcome string, seconds float64, links int) {
	fileType := FileTypeLabel(contentType)
	m.ExtractionsTotal.WithLabelValues(fileType, outcome).Inc()
	m.ExtractionDuration.WithLabelValues(fileType).Observe(seconds)
	if outcome == OutcomeSuccess {
		m.LinksExtracted.WithLabelValues(fileType).Observe(float64(links))
	}
}

const (
	FileTypePDF   = "pdf"
	FileTypeDOCX  = "docx"
	FileTypeOther = "other"
)

const (
	OutcomeSuccess     = "success"
	OutcomeParseError  = "parse_error"
	OutcomeUnsupported = "unsupported"
	OutcomeMismatch    = "content_mismatch"
)
