package document

import (
	"context"

	domdoc "github.com/kailas-cloud/flowconn/internal/domain/document"
)

// Repository reads pages of documents from the document database.
type Repository interface {
	// QueryPage returns the id and page content of the documents in page, as JSON objects.
	QueryPage(ctx context.Context, page domdoc.Page) ([]map[string]any, error)
}
