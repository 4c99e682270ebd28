package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
)

// Connector is the connector name used in logs and metrics.
const Connector = "aggregate"

// Service merges multiple search outputs into one projected record list.
type Service struct {
	logger *zap.Logger
}

// New creates an aggregation service.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Aggregate flattens the item lists of inputs, in input order and item order, into
// records whose metadata holds only title and selfLink. Inputs without an item list are
// skipped. The status is always Success; the value is never nil.
func (s *Service) Aggregate(ctx context.Context, inputs []any) domain.Output {
	start := time.Now()

	records := make([]result.Record, 0)
	skipped := 0
	for _, in := range inputs {
		items, ok := ExtractItems(in)
		if !ok {
			skipped++
			continue
		}
		for _, item := range items {
			records = append(records, result.Normalize(item).Project())
		}
	}

	metrics.AggregatedRecordsTotal.Add(float64(len(records)))
	metrics.AggregateSkippedInputsTotal.Add(float64(skipped))
	metrics.ObserveInvocation(Connector, metrics.OutcomeSuccess, start)

	logpkg.ForConnector(ctx, s.logger, Connector).Info("aggregated search results",
		zap.Int("inputs", len(inputs)),
		zap.Int("skipped", skipped),
		zap.Int("records", len(records)),
	)

	return domain.Output{Value: records, Status: domain.StatusSuccess}
}
