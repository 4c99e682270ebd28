package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	aggregateuc "github.com/kailas-cloud/flowconn/internal/usecase/aggregate"
	chatuc "github.com/kailas-cloud/flowconn/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/flowconn/internal/usecase/document"
	healthuc "github.com/kailas-cloud/flowconn/internal/usecase/health"
	historyuc "github.com/kailas-cloud/flowconn/internal/usecase/history"
	searchuc "github.com/kailas-cloud/flowconn/internal/usecase/search"
)

// MaxRequestBody caps the size of a decoded request body.
const MaxRequestBody = 8 << 20

// ErrorCode classifies host-level request failures.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest    ErrorCode = "bad_request"
	ErrorCodeUnauthorized  ErrorCode = "unauthorized"
	ErrorCodeNotConfigured ErrorCode = "connector_not_configured"
	ErrorCodeInternal      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AggregateRequest is the body of POST /v1/aggregate.
type AggregateRequest struct {
	Inputs []any `json:"inputs"`
}

// CollectionsResponse is the body of GET /v1/collections.
type CollectionsResponse struct {
	Collections []string `json:"collections"`
	Default     string   `json:"default"`
	MaxResults  int      `json:"max_results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Version string                          `json:"version"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
}

// HistoryParams holds the query parameters of GET /v1/history/{session_id}.
type HistoryParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// Services bundles the connectors exposed over HTTP. A nil connector answers 503.
type Services struct {
	Search    *searchuc.Service
	Aggregate *aggregateuc.Service
	Chat      *chatuc.Service
	Documents *documentuc.Service
	History   *historyuc.Service
	Health    *healthuc.Service
}

// Server exposes connectors as JSON endpoints. Connector failures are data: every
// connector route answers 200 with a {"value","status"} body.
type Server struct {
	svc     Services
	version string
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if svc.Aggregate == nil {
		svc.Aggregate = aggregateuc.New(logger)
	}
	return &Server{svc: svc, version: version, logger: logger}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/aggregate", s.Aggregate)
		r.Post("/chat", s.Chat)
		r.Post("/documents/query", s.QueryDocuments)
		r.Get("/collections", s.ListCollections)

		r.Get("/history/{session_id}", s.GetHistory)
		r.Post("/history/{session_id}", s.AppendHistory)
		r.Delete("/history/{session_id}", s.ClearHistory)
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	if s.svc.Search == nil {
		writeNotConfigured(w, searchuc.Connector)
		return
	}
	var in searchuc.Input
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Search.Execute(r.Context(), in))
}

// Aggregate handles POST /v1/aggregate.
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Aggregate.Aggregate(r.Context(), req.Inputs))
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.svc.Chat == nil {
		writeNotConfigured(w, chatuc.Connector)
		return
	}
	var in chatuc.Input
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Chat.Complete(r.Context(), in))
}

// QueryDocuments handles POST /v1/documents/query.
func (s *Server) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	if s.svc.Documents == nil {
		writeNotConfigured(w, documentuc.Connector)
		return
	}
	var in documentuc.Input
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Documents.Query(r.Context(), in))
}

// ListCollections handles GET /v1/collections.
func (s *Server) ListCollections(w http.ResponseWriter, _ *http.Request) {
	if s.svc.Search == nil {
		writeNotConfigured(w, searchuc.Connector)
		return
	}
	names, def := s.svc.Search.Collections()
	writeJSON(w, http.StatusOK, CollectionsResponse{
		Collections: names,
		Default:     def,
		MaxResults:  s.svc.Search.MaxResults(),
	})
}

// GetHistory handles GET /v1/history/{session_id}.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.History == nil {
		writeNotConfigured(w, historyuc.Connector)
		return
	}
	sessionID, ok := bindSessionID(w, r)
	if !ok {
		return
	}

	var params HistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter limit: "+err.Error())
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	writeJSON(w, http.StatusOK, s.svc.History.Messages(r.Context(), sessionID, limit))
}

// AppendHistory handles POST /v1/history/{session_id}.
func (s *Server) AppendHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.History == nil {
		writeNotConfigured(w, historyuc.Connector)
		return
	}
	sessionID, ok := bindSessionID(w, r)
	if !ok {
		return
	}
	var in historyuc.AppendInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.History.Append(r.Context(), sessionID, in))
}

// ClearHistory handles DELETE /v1/history/{session_id}.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.svc.History == nil {
		writeNotConfigured(w, historyuc.Connector)
		return
	}
	sessionID, ok := bindSessionID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.History.Clear(r.Context(), sessionID))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}
	if s.svc.Health != nil {
		report = s.svc.Health.Check(r.Context())
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  report.Status,
		Version: s.version,
		Checks:  report.Checks,
	})
}

func bindSessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var sessionID string
	err := runtime.BindStyledParameterWithOptions("simple", "session_id", chi.URLParam(r, "session_id"), &sessionID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter session_id: "+err.Error())
		return "", false
	}
	return sessionID, true
}

// decodeBody decodes a JSON body, keeping numbers as json.Number. It writes a 400 and
// returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeNotConfigured(w http.ResponseWriter, connector string) {
	writeError(w, http.StatusServiceUnavailable, ErrorCodeNotConfigured,
		domain.NewConfigurationError(connector, "connector", "not configured").Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
