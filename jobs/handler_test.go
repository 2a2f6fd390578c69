package jobs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsDefaultQueue(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, slog.Default()).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, QueueDefault, got.Queue)
	require.Zero(t, got.Pending)
}
