package history

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// listStore is the consumer interface for list-backed history (ISP).
type listStore interface {
	RPush(ctx context.Context, key string, ttl time.Duration, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	Del(ctx context.Context, key string) error
}

// ListRepo keeps each session as a Redis/Valkey list of JSON messages.
type ListRepo struct {
	store  listStore
	prefix string
	ttl    time.Duration
}

// NewListRepo creates a list-backed history repository. Every append refreshes the
// session TTL; ttl <= 0 keeps sessions forever.
func NewListRepo(s listStore, prefix string, ttl time.Duration) *ListRepo {
	return &ListRepo{store: s, prefix: prefix, ttl: ttl}
}

// Append pushes a message onto its session list.
func (r *ListRepo) Append(ctx context.Context, msg chat.Message) error {
	data, err := encode(&msg)
	if err != nil {
		return err
	}
	key := r.key(msg.SessionID())
	if err := r.store.RPush(ctx, key, r.ttl, data); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// List returns the last limit messages of a session, oldest first.
func (r *ListRepo) List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		return []chat.Message{}, nil
	}
	key := r.key(sessionID)
	raw, err := r.store.LRange(ctx, key, -int64(limit), -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	msgs := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		m, err := decode(item)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Clear deletes the session list.
func (r *ListRepo) Clear(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *ListRepo) key(sessionID string) string {
	return r.prefix + sessionID
}
