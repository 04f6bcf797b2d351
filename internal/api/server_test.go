package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake Service
// ==========================

type fakeService struct {
	records map[uint64]models.ApplicationRecord
	stats   models.AggregateStats
	err     error
}

func (f *fakeService) Lookup(_ context.Context, id uint64) (models.ApplicationRecord, bool, error) {
	if f.err != nil {
		return models.ApplicationRecord{}, false, f.err
	}
	rec, ok := f.records[id]
	return rec, ok, nil
}

func (f *fakeService) GetStats(context.Context) (models.AggregateStats, error) {
	return f.stats, f.err
}

func (f *fakeService) Ping(context.Context) error { return f.err }

func newTestServer(t *testing.T, svc Service, rl RateLimit) *Server {
	return NewServer(Options{
		Service:   svc,
		Logger:    logger.NewTestLogger(t),
		RateLimit: rl,
		Metrics:   http.NotFoundHandler(),
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// ==========================
// Route Tests
// ==========================

func TestGetApplication(t *testing.T) {
	svc := &fakeService{records: map[uint64]models.ApplicationRecord{
		1: {ID: 1, Applicant: "student-a", Score: 385, SubmittedAt: 1700000000, Approved: true, AwardAmount: 20_000_000_000},
	}}
	s := newTestServer(t, svc, RateLimit{})

	tests := []struct {
		name   string
		path   string
		status int
		found  bool
		id     uint64
	}{
		{"existing", "/applications/1", http.StatusOK, true, 1},
		{"unknown id", "/applications/42", http.StatusNotFound, false, 0},
		{"zero id", "/applications/0", http.StatusNotFound, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			require.Equal(t, tt.status, rec.Code)

			var body ApplicationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.found, body.Found)
			assert.Equal(t, tt.id, body.Application.ID)
		})
	}
}

func TestGetApplication_BadID(t *testing.T) {
	s := newTestServer(t, &fakeService{}, RateLimit{})

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/applications/18446744073709551616").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/applications/abc").Code)
}

func TestGetStatistics(t *testing.T) {
	s := newTestServer(t, &fakeService{stats: models.AggregateStats{
		TotalApplications: 2, ApprovedCount: 1, PendingCount: 1, TotalDisbursed: 15_000_000_000,
	}}, RateLimit{})

	rec := get(t, s, "/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalApplications":2,"approvedCount":1,"pendingCount":1,"totalDisbursed":15000000000}`, rec.Body.String())
}

func TestStorageFailure(t *testing.T) {
	s := newTestServer(t, &fakeService{err: fmt.Errorf("%w: connection refused", scholarship.ErrStorage)}, RateLimit{})

	rec := get(t, s, "/statistics")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORAGE_FAILURE")

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/applications/1").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/ready").Code)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, &fakeService{}, RateLimit{})

	assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/ready").Code)
}

// ==========================
// Rate Limiting Tests
// ==========================

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	s := newTestServer(t, &fakeService{}, RateLimit{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, get(t, s, "/statistics").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/statistics").Code)

	rec := get(t, s, "/statistics")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health checks are not rate limited
	assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
}

func TestRateLimit_KeysByClient(t *testing.T) {
	s := newTestServer(t, &fakeService{}, RateLimit{RequestsPerSecond: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, get(t, s, "/statistics").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, s, "/statistics").Code)

	req := httptest.NewRequest(http.MethodGet, "/statistics", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimiterStore_Cleanup(t *testing.T) {
	store := newLimiterStore(1, 1, time.Minute)
	now := time.Now()

	store.get("a", now.Add(-2*time.Minute))
	store.get("b", now)
	store.cleanup(now)

	assert.Equal(t, 1, store.len())
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"remote host", "192.0.2.1:1234", "", "192.0.2.1"},
		{"forwarded first hop", "192.0.2.1:1234", "198.51.100.7, 192.0.2.1", "198.51.100.7"},
		{"remote without port", "192.0.2.1", "", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientKey(req))
		})
	}
}
