package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/flowconn/internal/db/cosmos"
	domdoc "github.com/kailas-cloud/flowconn/internal/domain/document"
)

// pageQuery selects the id and text of a window of documents across all partitions.
const pageQuery = "SELECT c.id, c.pageContent FROM c OFFSET @offset LIMIT @limit"

// store is the consumer interface for document pages (ISP).
type store interface {
	Query(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error)
	Ping(ctx context.Context, database, container string) error
}

// Repo implements usecase/document.Repository over Cosmos DB.
type Repo struct {
	store     store
	database  string
	container string
}

// New creates a document repository. database and container name the health-check target.
func New(s store, database, container string) *Repo {
	return &Repo{store: s, database: database, container: container}
}

// QueryPage returns one page of documents as JSON objects.
func (r *Repo) QueryPage(ctx context.Context, page domdoc.Page) ([]map[string]any, error) {
	raw, err := r.store.Query(ctx, page.Database(), page.Container(), cosmos.Query{
		Text: pageQuery,
		Params: []cosmos.Param{
			{Name: "@offset", Value: page.Offset()},
			{Name: "@limit", Value: page.Limit()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query %s/%s: %w", page.Database(), page.Container(), err)
	}

	docs := make([]map[string]any, 0, len(raw))
	for i, item := range raw {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// HealthCheck verifies the configured container is reachable.
func (r *Repo) HealthCheck(ctx context.Context) error {
	return r.store.Ping(ctx, r.database, r.container)
}
