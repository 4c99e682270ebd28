package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// messageDoc is the stored shape of a chat message in every backend.
type messageDoc struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toDoc(m *chat.Message) messageDoc {
	return messageDoc{
		ID:        m.ID(),
		SessionID: m.SessionID(),
		UserID:    m.UserID(),
		Role:      string(m.Role()),
		Content:   m.Content(),
		CreatedAt: m.CreatedAt().UTC().Format(timeLayout),
	}
}

func (d messageDoc) toMessage() (chat.Message, error) {
	created, err := time.Parse(timeLayout, d.CreatedAt)
	if err != nil {
		created, err = time.Parse(time.RFC3339Nano, d.CreatedAt)
		if err != nil {
			return chat.Message{}, fmt.Errorf("parse createdAt %q: %w", d.CreatedAt, err)
		}
	}
	return chat.Reconstruct(d.ID, d.SessionID, d.UserID, chat.Role(d.Role), d.Content, created.UTC()), nil
}

func encode(m *chat.Message) ([]byte, error) {
	data, err := json.Marshal(toDoc(m))
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

func decode(data []byte) (chat.Message, error) {
	var d messageDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return chat.Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return d.toMessage()
}
