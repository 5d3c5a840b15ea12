package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Contadores(t *testing.T) {
	c := New()
	c.ScanCompleted("success")
	c.ScanCompleted("success")
	c.ScanCompleted("unknown_article")
	c.ImportCompleted("catalog", 120)
	c.ImportCompleted("catalog", 30)
	c.PersistenceFailed("upsert_items")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.scans.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scans.WithLabelValues("unknown_article")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.imports.WithLabelValues("catalog")))
	assert.Equal(t, 150.0, testutil.ToFloat64(c.importRows.WithLabelValues("catalog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistFails.WithLabelValues("upsert_items")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.ScanCompleted("success")
	c.ObserveRequest("/api/audit/scans", "POST", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `inventario_audit_scans_total{state="success"} 1`))
	assert.Contains(t, body, "inventario_audit_http_request_duration_seconds_count")
	assert.Contains(t, body, "go_goroutines")
}
