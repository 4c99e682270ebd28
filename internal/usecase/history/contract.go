package history

import (
	"context"

	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// Store persists chat messages per session.
type Store interface {
	// Append adds a message to the end of its session.
	Append(ctx context.Context, msg chat.Message) error
	// List returns up to limit most recent messages of a session, oldest first.
	List(ctx context.Context, sessionID string, limit int) ([]chat.Message, error)
	// Clear removes every message of a session.
	Clear(ctx context.Context, sessionID string) error
}
