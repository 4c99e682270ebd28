package document

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	domdoc "github.com/kailas-cloud/flowconn/internal/domain/document"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
)

// Connector is the connector name used in logs and metrics.
const Connector = "documents"

// DefaultTimeout bounds one page query unless WithTimeout overrides it.
const DefaultTimeout = 10 * time.Second

// Input selects one page of documents. Empty names fall back to the configured container.
type Input struct {
	Database  string `json:"database,omitempty"`
	Container string `json:"container,omitempty"`
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit,omitempty"`
}

// Service pages through a document container.
type Service struct {
	repo             Repository
	defaultDatabase  string
	defaultContainer string
	defaultPageSize  int
	maxPageSize      int
	timeout          time.Duration
	logger           *zap.Logger
}

// New creates a document query service.
func New(repo Repository, database, container string, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, domain.NewConfigurationError(Connector, "cosmos", "no document database configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:             repo,
		defaultDatabase:  database,
		defaultContainer: container,
		defaultPageSize:  domdoc.DefaultLimit,
		maxPageSize:      domdoc.DefaultMaxLimit,
		timeout:          DefaultTimeout,
		logger:           logger,
	}, nil
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithTimeout sets the bound on one page query. Non-positive values are ignored.
func (s *Service) WithTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Query reads one page of documents. The query runs on a fresh context bounded only by
// the configured timeout; caller cancellation does not abort it.
func (s *Service) Query(ctx context.Context, in Input) domain.Output {
	start := time.Now()
	log := logpkg.ForConnector(ctx, s.logger, Connector)

	database, container := in.Database, in.Container
	if database == "" {
		database = s.defaultDatabase
	}
	if container == "" {
		container = s.defaultContainer
	}
	limit := in.Limit
	if limit <= 0 {
		limit = min(s.defaultPageSize, s.maxPageSize)
	}

	page, err := domdoc.NewPage(database, container, in.Offset, limit, s.maxPageSize)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeValidation, start)
		log.Debug("document query rejected", zap.Error(err))
		return domain.Failure(fmt.Sprintf("Invalid query parameters: %v", err))
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	docs, err := s.repo.QueryPage(callCtx, page)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeTransport, start)
		log.Warn("document query failed",
			zap.String("database", page.Database()),
			zap.String("container", page.Container()),
			zap.Error(err),
		)
		return domain.Failure(fmt.Sprintf("Request failed: %v", err))
	}
	if docs == nil {
		docs = []map[string]any{}
	}

	outcome := metrics.OutcomeSuccess
	if len(docs) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveInvocation(Connector, outcome, start)
	log.Debug("document query completed",
		zap.Int("offset", page.Offset()),
		zap.Int("limit", page.Limit()),
		zap.Int("count", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)

	return domain.Success(docs, len(docs) == 0)
}
