package request

import (
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/flowconn/internal/domain/search/catalog"
	"github.com/kailas-cloud/flowconn/internal/domain/search/filter"
	"github.com/kailas-cloud/flowconn/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength     = 4096
	DefaultResultCount = 5
	DefaultMaxResults  = 10
	DefaultThreshold   = 1.0
)

// Limits are the endpoint-specific bounds a request is validated against.
type Limits struct {
	Catalog    catalog.Catalog
	MaxResults int
}

// Request is a validated semantic search query (immutable value object).
type Request struct {
	collection  string
	query       string
	searchMode  mode.Mode
	resultCount int
	filter      filter.Filter
	threshold   float64
}

// New validates all parameters and either returns a complete Request or an error.
// Empty mode defaults to mode.Default.
func New(
	collection, query string,
	m mode.Mode,
	resultCount int,
	f filter.Filter,
	threshold float64,
	lim Limits,
) (Request, error) {
	if collection == "" {
		return Request{}, errors.New("collection is required")
	}
	if !lim.Catalog.Contains(collection) {
		return Request{}, fmt.Errorf("unknown collection %q", collection)
	}
	if query == "" {
		return Request{}, errors.New("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Default
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if err := CheckResultCount(resultCount, lim.MaxResults); err != nil {
		return Request{}, err
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return Request{}, errors.New("threshold must be a finite number")
	}

	return Request{
		collection:  collection,
		query:       query,
		searchMode:  m,
		resultCount: resultCount,
		filter:      f,
		threshold:   threshold,
	}, nil
}

// Collection returns the target collection.
func (r *Request) Collection() string { return r.collection }

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// ResultCount returns the number of documents to retrieve.
func (r *Request) ResultCount() int { return r.resultCount }

// Filter returns the optional where-filter.
func (r *Request) Filter() filter.Filter { return r.filter }

// Threshold returns the minimum relevance score.
func (r *Request) Threshold() float64 { return r.threshold }
