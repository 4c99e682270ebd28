package history

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/flowconn/internal/db/cosmos"
	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// mockListStore implements the list consumer interface for tests.
type mockListStore struct {
	rpushFn  func(ctx context.Context, key string, ttl time.Duration, values ...[]byte) error
	lrangeFn func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	delFn    func(ctx context.Context, key string) error
}

func (m *mockListStore) RPush(ctx context.Context, key string, ttl time.Duration, values ...[]byte) error {
	if m.rpushFn != nil {
		return m.rpushFn(ctx, key, ttl, values...)
	}
	return nil
}

func (m *mockListStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockListStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

// mockItemStore implements the item consumer interface for tests.
type mockItemStore struct {
	queryFn  func(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error)
	upsertFn func(ctx context.Context, database, container, partition string, item []byte) error
	deleteFn func(ctx context.Context, database, container, partition, id string) error
}

func (m *mockItemStore) Query(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, database, container, q)
	}
	return nil, nil
}

func (m *mockItemStore) Upsert(ctx context.Context, database, container, partition string, item []byte) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, database, container, partition, item)
	}
	return nil
}

func (m *mockItemStore) Delete(ctx context.Context, database, container, partition, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, database, container, partition, id)
	}
	return nil
}

func testMessage(t *testing.T, id, content string, at time.Time) chat.Message {
	t.Helper()
	m, err := chat.NewMessage(id, "sess-1", "user-1", chat.RoleUser, content, at)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	return m
}

func mustEncode(t *testing.T, m chat.Message) []byte {
	t.Helper()
	data, err := encode(&m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}
