package document

import (
	"context"

	"github.com/kailas-cloud/flowconn/internal/db/cosmos"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	queryFn func(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error)
	pingFn  func(ctx context.Context, database, container string) error
}

func (m *mockStore) Query(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, database, container, q)
	}
	return nil, nil
}

func (m *mockStore) Ping(ctx context.Context, database, container string) error {
	if m.pingFn != nil {
		return m.pingFn(ctx, database, container)
	}
	return nil
}
