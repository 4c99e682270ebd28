package chat

import (
	"context"

	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// Completer answers a prompt with generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Recorder stores chat turns of a session.
type Recorder interface {
	Record(ctx context.Context, sessionID, userID string, role chat.Role, content string) (chat.Message, error)
}
