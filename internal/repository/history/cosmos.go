package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/flowconn/internal/db/cosmos"
	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

const (
	listQuery = "SELECT TOP @limit * FROM c WHERE c.sessionId = @session ORDER BY c.createdAt DESC"
	idsQuery  = "SELECT c.id FROM c WHERE c.sessionId = @session"
)

// itemStore is the consumer interface for item-backed history (ISP).
type itemStore interface {
	Query(ctx context.Context, database, container string, q cosmos.Query) ([][]byte, error)
	Upsert(ctx context.Context, database, container, partition string, item []byte) error
	Delete(ctx context.Context, database, container, partition, id string) error
}

// ItemRepo stores one Cosmos DB item per message in a container partitioned by /sessionId.
type ItemRepo struct {
	store     itemStore
	database  string
	container string
}

// NewItemRepo creates an item-backed history repository.
func NewItemRepo(s itemStore, database, container string) *ItemRepo {
	return &ItemRepo{store: s, database: database, container: container}
}

// Append upserts the message into its session partition.
func (r *ItemRepo) Append(ctx context.Context, msg chat.Message) error {
	data, err := encode(&msg)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, r.database, r.container, msg.SessionID(), data); err != nil {
		return fmt.Errorf("upsert message %s: %w", msg.ID(), err)
	}
	return nil
}

// List returns the last limit messages of a session, oldest first.
func (r *ItemRepo) List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		return []chat.Message{}, nil
	}
	raw, err := r.store.Query(ctx, r.database, r.container, cosmos.Query{
		Text: listQuery,
		Params: []cosmos.Param{
			{Name: "@limit", Value: limit},
			{Name: "@session", Value: sessionID},
		},
		Partition: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", sessionID, err)
	}

	msgs := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		m, err := decode(item)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		msgs = append(msgs, m)
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// Clear deletes every message item of the session.
func (r *ItemRepo) Clear(ctx context.Context, sessionID string) error {
	raw, err := r.store.Query(ctx, r.database, r.container, cosmos.Query{
		Text:      idsQuery,
		Params:    []cosmos.Param{{Name: "@session", Value: sessionID}},
		Partition: sessionID,
	})
	if err != nil {
		return fmt.Errorf("query session %s: %w", sessionID, err)
	}

	for _, item := range raw {
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("decode item id: %w", err)
		}
		if err := r.store.Delete(ctx, r.database, r.container, sessionID, ref.ID); err != nil {
			return fmt.Errorf("delete message %s: %w", ref.ID, err)
		}
	}
	return nil
}
