package search

import (
	"context"

	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
)

// Searcher issues a single call to the upstream search endpoint and returns the decoded
// JSON body (nil for an empty body).
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (any, error)
}
