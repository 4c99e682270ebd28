package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/search/filter"
	"github.com/kailas-cloud/flowconn/internal/domain/search/mode"
	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
)

// Connector is the connector name used in logs and metrics.
const Connector = "search"

// Input is the host-supplied scalar input of one search invocation.
type Input struct {
	Collection  string         `json:"collection"`
	Query       string         `json:"query"`
	ResultCount any            `json:"result_count"` // UI text or JSON number
	Mode        mode.Mode      `json:"search_mode,omitempty"`
	Filter      map[string]any `json:"filter,omitempty"`
	Threshold   *float64       `json:"score_threshold,omitempty"`
}

// Service builds, validates and executes bounded semantic search requests.
type Service struct {
	searcher Searcher
	limits   request.Limits
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a search service. Invalid settings yield a domain.ConfigurationError.
func New(searcher Searcher, limits request.Limits, timeout time.Duration, logger *zap.Logger) (*Service, error) {
	if searcher == nil {
		return nil, domain.NewConfigurationError(Connector, "transport", "is required")
	}
	if limits.Catalog.Len() == 0 {
		return nil, domain.NewConfigurationError(Connector, "collections", "at least one collection is required")
	}
	if limits.MaxResults < 1 {
		return nil, domain.NewConfigurationError(Connector, "max_results", "must be positive")
	}
	if timeout <= 0 {
		return nil, domain.NewConfigurationError(Connector, "timeout", "must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{searcher: searcher, limits: limits, timeout: timeout, logger: logger}, nil
}

// Collections returns the known collections and the host-facing default.
func (s *Service) Collections() (names []string, defaultName string) {
	return s.limits.Catalog.Names(), s.limits.Catalog.Default()
}

// MaxResults returns the configured result count ceiling.
func (s *Service) MaxResults() int { return s.limits.MaxResults }

// Execute validates the input, performs exactly one upstream call and converts every
// failure into a status-carrying Output. An empty collection selects the catalog default.
func (s *Service) Execute(ctx context.Context, in Input) domain.Output {
	start := time.Now()
	log := logpkg.ForConnector(ctx, s.logger, Connector)

	req, err := s.build(in)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeValidation, start)
		log.Debug("search rejected", zap.Error(err))
		return domain.Failure(err.Error())
	}

	// The call is bounded by the configured timeout only; caller cancellation does not abort it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	docs, err := s.searcher.Search(callCtx, &req)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeTransport, start)
		log.Warn("search request failed",
			zap.String("collection", req.Collection()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.Failure(fmt.Sprintf("Request failed: %v", err))
	}

	empty := isEmpty(docs)
	outcome := metrics.OutcomeSuccess
	if empty {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveInvocation(Connector, outcome, start)
	log.Debug("search completed",
		zap.String("collection", req.Collection()),
		zap.Int("result_count", req.ResultCount()),
		zap.Bool("empty", empty),
		zap.Duration("duration", time.Since(start)),
	)

	return domain.Success(docs, empty)
}

// build runs the two validation phases: result count first, then the full request.
func (s *Service) build(in Input) (request.Request, error) {
	n, err := request.ParseResultCount(in.ResultCount)
	if err == nil {
		err = request.CheckResultCount(n, s.limits.MaxResults)
	}
	if err != nil {
		return request.Request{}, &inputError{prefix: "Invalid input for result_count", err: err}
	}

	collection := in.Collection
	if collection == "" {
		collection = s.limits.Catalog.Default()
	}
	threshold := request.DefaultThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}

	f, err := filter.New(in.Filter)
	if err != nil {
		return request.Request{}, invalidParams(err)
	}
	req, err := request.New(collection, in.Query, in.Mode, n, f, threshold, s.limits)
	if err != nil {
		return request.Request{}, invalidParams(err)
	}
	return req, nil
}

func invalidParams(err error) error {
	return &inputError{prefix: "Invalid search parameters", err: err}
}

// inputError carries the host-facing status prefix of a validation failure.
type inputError struct {
	prefix string
	err    error
}

func (e *inputError) Error() string { return e.prefix + ": " + e.err.Error() }

func (e *inputError) Unwrap() []error { return []error{domain.ErrValidation, e.err} }

// isEmpty reports whether a decoded JSON body holds no documents.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case string:
		return val == ""
	default:
		return false
	}
}
