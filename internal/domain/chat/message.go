package chat

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]+$`)

// MaxContentSize is the maximum message content size in bytes.
const MaxContentSize = 163840 // 160KB

// Role is the author of a chat message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid checks if the role is one of the supported values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Message is one entry of a chat session (immutable value object).
type Message struct {
	id        string
	sessionID string
	userID    string
	role      Role
	content   string
	createdAt time.Time
}

// NewMessage validates and creates a Message.
func NewMessage(id, sessionID, userID string, role Role, content string, createdAt time.Time) (Message, error) {
	if id == "" {
		return Message{}, fmt.Errorf("message ID is required")
	}
	if err := ValidateSessionID(sessionID); err != nil {
		return Message{}, err
	}
	if userID == "" {
		return Message{}, fmt.Errorf("user ID is required")
	}
	if !role.IsValid() {
		return Message{}, fmt.Errorf("invalid message role: %q", role)
	}
	if content == "" {
		return Message{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Message{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Message{
		id:        id,
		sessionID: sessionID,
		userID:    userID,
		role:      role,
		content:   content,
		createdAt: createdAt.UTC(),
	}, nil
}

// ValidateSessionID checks a chat session identifier.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if len(sessionID) > 256 {
		return fmt.Errorf("session ID too long (max 256)")
	}
	if !idRegex.MatchString(sessionID) {
		return fmt.Errorf("session ID contains invalid characters")
	}
	return nil
}

// Reconstruct creates a Message without validation (storage hydration).
func Reconstruct(id, sessionID, userID string, role Role, content string, createdAt time.Time) Message {
	return Message{id: id, sessionID: sessionID, userID: userID, role: role, content: content, createdAt: createdAt}
}

// ID returns the message identifier.
func (m *Message) ID() string { return m.id }

// SessionID returns the chat session identifier.
func (m *Message) SessionID() string { return m.sessionID }

// UserID returns the author's user identifier.
func (m *Message) UserID() string { return m.userID }

// Role returns the message author role.
func (m *Message) Role() Role { return m.role }

// Content returns the message text.
func (m *Message) Content() string { return m.content }

// CreatedAt returns the message timestamp in UTC.
func (m *Message) CreatedAt() time.Time { return m.createdAt }
