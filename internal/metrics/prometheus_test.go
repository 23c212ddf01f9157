package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManager_Counters(t *testing.T) {
	m := NewMetricsManager("collex")

	m.ObserveListing("listing.created")
	m.ObserveListing("listing.created")
	m.ObserveListing("listing.deleted")
	m.ObserveListing("unknown")
	m.ObserveUpload("avatars", "success")
	m.ObserveAuth("SIGNED_IN")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListingsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ListingsUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("avatars", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues("SIGNED_IN")))
}

func TestMetricsManager_Handler(t *testing.T) {
	m := NewMetricsManager("collex")
	m.ObserveRequest(http.MethodGet, "/api/v1/feed", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `collex_http_request_latency_seconds_count{method="GET",route="/api/v1/feed",status="200"} 1`)
}
