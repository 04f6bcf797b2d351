// Package api serves the read side of the scholarship ledger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Service interface {
	Lookup(ctx context.Context, id uint64) (models.ApplicationRecord, bool, error)
	GetStats(ctx context.Context) (models.AggregateStats, error)
	Ping(ctx context.Context) error
}

type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration
}

type Options struct {
	Service   Service
	Logger    logger.Logger
	RateLimit RateLimit
	// Metrics is served on /metrics. Defaults to the process-wide Prometheus registry.
	Metrics http.Handler
}

type Server struct {
	router  *mux.Router
	service Service
	limiter *limiterStore
	logger  logger.Logger
}

// ApplicationResponse mirrors the get-scholarship-application worker output.
type ApplicationResponse struct {
	Found       bool                     `json:"found"`
	Application models.ApplicationRecord `json:"application"`
}

type errorResponse struct {
	Error *apperrors.StandardError `json:"error"`
}

func NewServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	s := &Server{
		router:  mux.NewRouter(),
		service: opts.Service,
		logger:  opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)

	read := s.router.PathPrefix("/").Subrouter()
	if opts.RateLimit.RequestsPerSecond > 0 {
		s.limiter = newLimiterStore(opts.RateLimit.RequestsPerSecond, opts.RateLimit.Burst, opts.RateLimit.IdleTTL)
		read.Use(s.limiter.middleware)
	}
	read.HandleFunc("/applications/{id:[0-9]+}", s.handleGetApplication).Methods(http.MethodGet)
	read.HandleFunc("/statistics", s.handleGetStatistics).Methods(http.MethodGet)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the rate limiter janitor until ctx is done.
func (s *Server) Start(ctx context.Context) {
	if s.limiter != nil {
		s.limiter.startJanitor(ctx, time.Minute)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleGetApplication answers 404 with the zero-valued record when the id is unknown.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, apperrors.NewInvalidInputError("applicationId must fit in 64 bits"))
		return
	}

	rec, found, err := s.service.Lookup(r.Context(), id)
	if err != nil {
		s.writeError(w, scholarship.ToStandardError(err))
		return
	}

	status := http.StatusOK
	if !found {
		status = http.StatusNotFound
	}
	writeJSON(w, status, ApplicationResponse{Found: found, Application: rec})
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.GetStats(r.Context())
	if err != nil {
		s.writeError(w, scholarship.ToStandardError(err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	status := httpStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
	}
	writeJSON(w, status, errorResponse{Error: stdErr})
}

func httpStatus(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeApplicationNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeStorageFailure, apperrors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
