package main

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/liamcoop/salarypredict/analytics"
	"github.com/liamcoop/salarypredict/features"
	"github.com/liamcoop/salarypredict/internal/logger"
	"github.com/liamcoop/salarypredict/registry"
)

// maxBodyBytes bounds prediction request bodies
const maxBodyBytes = 1 << 20

// pinger is implemented by dataset stores backed by a live connection
type pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes chart defaults and middleware.
type Options struct {
	HistogramBins  int
	TopCountries   int
	RequestTimeout time.Duration
	SlowRequest    time.Duration
}

type Server struct {
	registry *registry.Registry
	engine   *analytics.Engine
	store    pinger
	opts     Options
	router   *chi.Mux
}

// NewServer wires handlers around a loaded registry and analytics engine.
// store may be nil when the dataset came from a file.
func NewServer(reg *registry.Registry, engine *analytics.Engine, store pinger, opts Options) *Server {
	if opts.HistogramBins < 1 {
		opts.HistogramBins = 30
	}
	if opts.TopCountries < 1 {
		opts.TopCountries = 5
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		registry: reg,
		engine:   engine,
		store:    store,
		opts:     opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.opts.SlowRequest))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/options", s.handleOptions)
		r.Post("/predict", s.handlePredict)
		r.Get("/summary", s.handleSummary)

		r.Route("/chart-data", func(r chi.Router) {
			r.Get("/group-mean", s.handleGroupMean)
			r.Get("/histogram", s.handleHistogram)
			r.Get("/{chart}", s.handleChart)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Predictors:   s.registry.Len(),
		Observations: s.engine.Len(),
	}

	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MetricsResponse{Stats: logger.Snapshot()})
}

// Options handler: dropdown values for the prediction form
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	countries := features.Country.Values()
	educations := features.EducationLevel.Values()
	employments := features.EmploymentType.Values()

	respondJSON(w, http.StatusOK, OptionsResponse{
		Countries:   countries,
		Educations:  educations,
		Employments: employments,
		Models:      s.registry.Names(),
		Defaults: PredictRequest{
			Model:      s.registry.Default(),
			Country:    countries[0],
			EdLevel:    educations[0],
			Employment: employments[0],
		},
	})
}

// decodePredictRequest reads JSON bodies and falls back to form fields.
func decodePredictRequest(r *http.Request) (PredictRequest, error) {
	var req PredictRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return PredictRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return PredictRequest{}, err
	}
	req.Model = r.PostForm.Get("model")
	req.Country = r.PostForm.Get("country")
	req.EdLevel = r.PostForm.Get("edlevel")
	req.Employment = r.PostForm.Get("employment")
	req.Experience = looseString(r.PostForm.Get("experience"))
	return req, nil
}

// Prediction handler
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodePredictRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.registry.Default()
	}

	sel := req.Selection()
	vec := features.Encode(s.registry.Vocabulary(), sel)

	pred, err := s.registry.Predict(model, vec)
	if err != nil {
		var unknown *registry.UnknownPredictorError
		if errors.As(err, &unknown) {
			logger.WarnUnknownPredictor()
			logger.Warn("unknown predictor requested", "model", unknown.Name)
			respondError(w, http.StatusNotFound, "unknown model", err)
			return
		}
		logger.Error("prediction failed", "model", model, "error", err)
		respondError(w, http.StatusInternalServerError, "prediction failed", err)
		return
	}

	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		logger.Error("prediction is not finite", "model", model, "value", pred)
		respondError(w, http.StatusInternalServerError, "prediction failed", nil)
		return
	}

	logger.PredictionsServed.Add(1)
	logger.Debug("prediction served",
		"model", model,
		"country", sel.Country,
		"experience", features.ParseYears(sel.YearsExperience),
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondJSON(w, http.StatusOK, PredictResponse{
		ID:         uuid.NewString(),
		Prediction: pred,
		Formatted:  analytics.FormatAmount(pred),
		Model:      model,
		Inputs:     sel,
	})
}

// Named dashboard charts
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart := chi.URLParam(r, "chart")

	switch chart {
	case "salary-distribution":
		bins, err := s.engine.Histogram(s.engine.ValueColumn(), s.opts.HistogramBins)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to build histogram", err)
			return
		}
		respondJSON(w, http.StatusOK, analytics.HistogramChart("Count", bins))
	case "top-countries":
		groups := s.engine.TopK(features.Country, s.opts.TopCountries)
		respondJSON(w, http.StatusOK, analytics.GroupsChart("Avg Salary (USD)", groups))
	case "education":
		groups := s.engine.GroupMean(features.EducationLevel)
		respondJSON(w, http.StatusOK, analytics.GroupsChart("Avg Salary (USD)", groups))
	case "employment":
		groups := s.engine.GroupMean(features.EmploymentType)
		respondJSON(w, http.StatusOK, analytics.GroupsChart("Avg Salary (USD)", groups))
	default:
		respondError(w, http.StatusNotFound, "unknown chart", nil)
	}
}

// Group mean over any supported dimension
func (s *Server) handleGroupMean(w http.ResponseWriter, r *http.Request) {
	dim, err := features.ParseDimension(r.URL.Query().Get("dimension"))
	if err != nil {
		logger.WarnInvalidDimension()
		respondError(w, http.StatusBadRequest, "invalid dimension", err)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid limit", err)
		return
	}

	groups := s.engine.TopK(dim, limit)
	respondJSON(w, http.StatusOK, analytics.GroupsChart("Avg Salary (USD)", groups))
}

// Histogram over any numeric column
func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		column = s.engine.ValueColumn()
	}

	bins := s.opts.HistogramBins
	if raw := r.URL.Query().Get("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid bins", err)
			return
		}
		bins = n
	}

	result, err := s.engine.Histogram(column, bins)
	if err != nil {
		var unknown *analytics.UnknownColumnError
		if errors.Is(err, analytics.ErrInvalidBinCount) || errors.As(err, &unknown) {
			respondError(w, http.StatusBadRequest, "invalid histogram request", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to build histogram", err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.HistogramChart("Count", result))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SummaryResponse{
		Column:  s.engine.ValueColumn(),
		Summary: s.engine.Summary(),
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}
