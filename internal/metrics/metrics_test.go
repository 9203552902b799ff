package metrics

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveExtraction(t *testing.T) {
	m := New()

	m.ObserveExtraction("application/pdf", OutcomeSuccess, 0.2, 3)
	m.ObserveExtraction("application/pdf", OutcomeParseError, 0.1, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(FileTypePDF, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(FileTypePDF, OutcomeParseError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LinksExtracted))
}

func TestObserveExtractionBoundsFileTypes(t *testing.T) {
	m := New()

	for i := 0; i < 50; i++ {
		m.ObserveExtraction(fmt.Sprintf("x/custom-%d", i), OutcomeUnsupported, 0, 0)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.ExtractionsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExtractionDuration))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(FileTypeOther, OutcomeUnsupported)))
}

func TestFileTypeLabel(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"application/pdf", FileTypePDF},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", FileTypeDOCX},
		{"text/plain", FileTypeOther},
		{"Application/PDF", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, FileTypeLabel(tt.contentType))
		})
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("/health", "GET", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
