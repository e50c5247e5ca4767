// Package chi is the HTTP transport: hand-written JSON handlers on the chi
// router, one error envelope, ordered domain-error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	domusage "github.com/kailas-cloud/propdex/internal/domain/usage"
	analysisuc "github.com/kailas-cloud/propdex/internal/usecase/analysis"
	cataloguc "github.com/kailas-cloud/propdex/internal/usecase/catalog"
	explainuc "github.com/kailas-cloud/propdex/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/propdex/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/propdex/internal/usecase/recommend"
	scoringuc "github.com/kailas-cloud/propdex/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/propdex/internal/usecase/usage"
	valuationuc "github.com/kailas-cloud/propdex/internal/usecase/valuation"
	"github.com/kailas-cloud/propdex/internal/version"
)

// Stable machine-readable error codes of the error envelope.
const (
	codeBadRequest           = "bad_request"
	codeUnauthorized         = "unauthorized"
	codeValidationFailed     = "validation_failed"
	codeNotFound             = "not_found"
	codeAlreadyExists        = "already_exists"
	codeDataUnavailable      = "data_unavailable"
	codeModelUnavailable     = "model_unavailable"
	codeComputationFailed    = "computation_failed"
	codeRateLimited          = "rate_limited"
	codeInsightQuotaExceeded = "insight_quota_exceeded"
	codeInsightProviderError = "insight_provider_error"
	codeInternalError        = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server handles the /v1 JSON API.
type Server struct {
	analysis     *analysisuc.Service
	valuations   *valuationuc.Service
	scores       *scoringuc.Service
	recommender  *recommenduc.Service
	explainer    *explainuc.Service
	interactions *interactionuc.Service
	catalog      *cataloguc.Service
	usage        *usageuc.Service
	health       *healthuc.Service

	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server over the engine usecases.
func NewServer(
	analysis *analysisuc.Service,
	valuations *valuationuc.Service,
	scores *scoringuc.Service,
	recommender *recommenduc.Service,
	explainer *explainuc.Service,
	interactions *interactionuc.Service,
	catalog *cataloguc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		analysis:     analysis,
		valuations:   valuations,
		scores:       scores,
		recommender:  recommender,
		explainer:    explainer,
		interactions: interactions,
		catalog:      catalog,
		usage:        usage,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		dataUnavailableHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, codeModelUnavailable),
		sentinelHandler(domain.ErrInsightQuotaExceeded, http.StatusPaymentRequired, codeInsightQuotaExceeded),
		sentinelHandler(domain.ErrInsightProviderError, http.StatusBadGateway, codeInsightProviderError),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
	}
	return s
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/comprehensive-analysis", s.ComprehensiveAnalysis)
		r.Post("/property-valuation", s.PropertyValuation)
		r.Get("/property-valuation/{propertyID}/explanation", s.ValuationExplanation)
		r.Post("/beneficiary-score", s.BeneficiaryScore)
		r.Post("/recommendations", s.Recommendations)
		r.Post("/user-interaction", s.UserInteraction)
		r.Put("/properties/{propertyID}", s.UpsertProperty)
		r.Get("/properties/{propertyID}", s.GetProperty)
		r.Delete("/properties/{propertyID}", s.DeleteProperty)
		r.Get("/properties", s.ListProperties)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/healthz", s.Liveness)
	r.Get("/readyz", s.Readiness)
	r.Get("/metrics", s.Metrics)
	r.Get("/version", s.Version)
}

// ComprehensiveAnalysis handles POST /v1/comprehensive-analysis.
func (s *Server) ComprehensiveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := req.Property.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	weights, err := s.scores.ResolveWeights(req.CustomWeights)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	domReq, err := domanl.NewRequest(rec, domanl.RiskTolerance(req.RiskTolerance),
		weights, nil, req.flags(), req.MaxRecommendations, req.RadiusKM)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.analysis.Analyze(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Implicit engagement signal; losing it never fails the analysis.
	if req.UserID != "" {
		if _, err := s.interactions.Record(r.Context(), req.UserID, rec.ID(), dominter.KindAnalysis); err != nil {
			s.logger.Warn("Failed to record analysis interaction", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, analysisToPayload(res))
}

// PropertyValuation handles POST /v1/property-valuation.
func (s *Server) PropertyValuation(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := req.Property.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, _, err := s.valuations.Value(r.Context(), rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, valuationToPayload(res))
}

// ValuationExplanation handles GET /v1/property-valuation/{propertyID}/explanation.
func (s *Server) ValuationExplanation(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	exp, err := s.explainer.ExplainStored(r.Context(), propertyID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	payload := explanationToPayload(exp)
	payload.PropertyID = propertyID
	writeJSON(w, http.StatusOK, payload)
}

// BeneficiaryScore handles POST /v1/beneficiary-score.
func (s *Server) BeneficiaryScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := req.Property.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, _, err := s.scores.Score(r.Context(), rec, req.CustomWeights)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreToPayload(rec.ID(), res, s.scores.ModelVersion()))
}

// Recommendations handles POST /v1/recommendations.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	domReq, err := req.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	recs, err := s.recommender.Recommend(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendationsResponse{
		Recommendations: recommendationsToPayload(recs),
		Strategy:        string(domReq.Strategy()),
		ModelVersion:    s.recommender.ModelVersion(),
	})
}

// UserInteraction handles POST /v1/user-interaction.
func (s *Server) UserInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := s.interactions.Record(r.Context(), req.UserID, req.PropertyID, dominter.Kind(req.InteractionType))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, interactionResponse{
		UserID:            event.UserID(),
		PropertyID:        event.PropertyID(),
		InteractionType:   string(event.Kind()),
		InteractionWeight: event.Weight(),
		OccurredAt:        event.OccurredAt().UTC(),
	})
}

// UpsertProperty handles PUT /v1/properties/{propertyID}.
func (s *Server) UpsertProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	var req propertyPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PropertyID != "" && req.PropertyID != propertyID {
		writeFieldError(w, http.StatusBadRequest, codeValidationFailed,
			"does not match the path identifier", "property_id")
		return
	}
	req.PropertyID = propertyID

	rec, err := req.toDomain()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	created, err := s.catalog.Upsert(r.Context(), rec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, propertyToPayload(rec))
}

// GetProperty handles GET /v1/properties/{propertyID}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, propertyToPayload(rec))
}

// DeleteProperty handles DELETE /v1/properties/{propertyID}.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "propertyID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProperties handles GET /v1/properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeFieldError(w, http.StatusBadRequest, codeValidationFailed,
				"must be a non-negative integer", "limit")
			return
		}
		limit = n
	}

	records, next, err := s.catalog.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	props := make([]propertyPayload, len(records))
	for i, rec := range records {
		props[i] = propertyToPayload(rec)
	}
	writeJSON(w, http.StatusOK, propertyListResponse{Properties: props, NextCursor: next})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch v := r.URL.Query().Get("period"); v {
	case "", string(domusage.PeriodMonth):
	case string(domusage.PeriodDay):
		period = domusage.PeriodDay
	case string(domusage.PeriodTotal):
		period = domusage.PeriodTotal
	default:
		writeFieldError(w, http.StatusBadRequest, codeValidationFailed,
			"must be one of day, month, total", "period")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := usageResponse{
		Period: string(report.Period()),
		Model:  report.Model(),
		Usage: usageMetricsPayload{
			InsightRequests: report.Metrics().InsightRequests(),
			Tokens:          report.Metrics().Tokens(),
		},
		Budget: usageBudgetPayload{
			CallsLimit:     report.Budget().CallsLimit(),
			CallsRemaining: report.Budget().CallsRemaining(),
			IsExhausted:    report.Budget().IsExhausted(),
		},
	}

	if report.Metrics().CostMillidollars() > 0 {
		cost := report.Metrics().CostMillidollars()
		resp.Usage.CostMillidollars = &cost
	}
	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// Liveness handles GET /healthz. It only proves the process serves traffic.
func (s *Server) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy)})
}

// Readiness handles GET /readyz: store ping plus model readiness.
func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Version: version.Version,
		Commit:  version.Commit,
		BuiltAt: version.BuiltAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeFieldError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Field: field}})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrValidation,
		domain.ErrDataUnavailable,
		domain.ErrModelUnavailable,
		domain.ErrRateLimited,
		domain.ErrInsightQuotaExceeded,
		domain.ErrInsightProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// validationHandler surfaces the offending field when the error names one.
func validationHandler(w http.ResponseWriter, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeFieldError(w, http.StatusBadRequest, codeValidationFailed, verr.Reason, verr.Field)
		return true
	}
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, codeValidationFailed, safeDomainMessage(err))
		return true
	}
	return false
}

// dataUnavailableHandler names the attribute the upstream supplier could not
// deliver. 424: the request was fine, a dependency was not.
func dataUnavailableHandler(w http.ResponseWriter, err error) bool {
	var derr *domain.DataUnavailableError
	if errors.As(err, &derr) {
		writeFieldError(w, http.StatusFailedDependency, codeDataUnavailable,
			safeDomainMessage(err), derr.Attribute)
		return true
	}
	if errors.Is(err, domain.ErrDataUnavailable) {
		writeError(w, http.StatusFailedDependency, codeDataUnavailable, safeDomainMessage(err))
		return true
	}
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	// Computation errors are violated pipeline invariants: log loudly,
	// answer generically.
	if errors.Is(err, domain.ErrComputation) {
		s.logger.Error("pipeline invariant violated", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeComputationFailed, "internal error")
		return
	}

	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}

	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
