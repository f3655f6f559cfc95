// Package chi is the HTTP transport: handlers, query binding and middleware for the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// errorCode is the machine-readable code of an error response.
type errorCode string

const (
	codeValidationFailed   errorCode = "validation_failed"
	codeCatalogUnavailable errorCode = "catalog_unavailable"
	codeRateLimited        errorCode = "rate_limited"
	codeUnauthorized       errorCode = "unauthorized"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type shopResponse struct {
	Name string  `json:"name"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}

type searchItemResponse struct {
	Title      string       `json:"title"`
	Popularity float64      `json:"popularity"`
	Quantity   int64        `json:"quantity"`
	Tag        string       `json:"tag"`
	Shop       shopResponse `json:"shop"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorHandlers maps domain errors to responses. Shared by handlers and middleware.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
	sentinelHandler(domain.ErrCatalogUnavailable, http.StatusInternalServerError, codeCatalogUnavailable),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
}

// Server serves the search API.
type Server struct {
	search *searchuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		search: search,
		health: health,
		logger: logger,
	}
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	req, err := request.New(derefString(params.Tags), params.Longitude, params.Latitude, params.Radius, params.Count)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := make([]searchItemResponse, len(items))
	for i := range items {
		resp[i] = searchItemToResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation errors only describe the request, so they are echoed in full.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrCatalogUnavailable,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// writeDomainError writes the response for err. Returns false when err matched
// no sentinel and was answered with 500 internal_error.
func writeDomainError(w http.ResponseWriter, err error) bool {
	msg := safeDomainMessage(err)
	for _, h := range errorHandlers {
		if h(w, err, msg) {
			return true
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	return false
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case !writeDomainError(w, err):
		s.logger.Error("internal error", zap.Error(err))
	case errors.Is(err, domain.ErrCatalogUnavailable):
		s.logger.Error("catalog load failed", zap.Error(err))
	default:
		s.logger.Debug("request rejected", zap.Error(err))
	}
}

func searchItemToResponse(it *result.Item) searchItemResponse {
	shop := it.Shop()
	return searchItemResponse{
		Title:      it.Title(),
		Popularity: it.Popularity(),
		Quantity:   it.Quantity(),
		Tag:        it.Tag(),
		Shop: shopResponse{
			Name: shop.Name,
			Lng:  shop.Lng,
			Lat:  shop.Lat,
		},
	}
}
