package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"manchitra-be/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requests for different place IDs must share one time series, keyed on the
// route pattern. Labelling with the raw path would grow a series per ID.
func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	metrics.Register()

	router := chi.NewRouter()
	router.Use(Metrics())
	router.Post("/places/{placeID}/view", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(target string) {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	serve("/places/1/view")
	after, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "manchitra_http_requests_total")
	require.NoError(t, err)

	serve("/places/2/view")
	serve("/places/31337/view")
	final, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "manchitra_http_requests_total")
	require.NoError(t, err)

	assert.Equal(t, after, final, "distinct place IDs must not mint new series")
}
