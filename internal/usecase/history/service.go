package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	"github.com/kailas-cloud/flowconn/internal/domain/chat"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
)

// Connector is the connector name used in logs and metrics.
const Connector = "history"

// Message listing bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// DefaultUserID is recorded when the host supplies no user.
const DefaultUserID = "anonymous"

// AppendInput is one message to record.
type AppendInput struct {
	UserID  string    `json:"user_id,omitempty"`
	Role    chat.Role `json:"role"`
	Content string    `json:"content"`
}

// View is the host-facing shape of a stored message.
type View struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      chat.Role `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Service records and reads chat sessions.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a history service.
func New(store Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, domain.NewConfigurationError(Connector, "driver", "no history store configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now, newID: uuid.NewString}, nil
}

// Append stores one message and returns its view.
func (s *Service) Append(ctx context.Context, sessionID string, in AppendInput) domain.Output {
	start := time.Now()

	msg, err := s.Record(ctx, sessionID, in.UserID, in.Role, in.Content)
	if err != nil {
		return s.fail(ctx, err, start)
	}

	metrics.ObserveInvocation(Connector, metrics.OutcomeSuccess, start)
	return domain.Success(toView(msg), false)
}

// Record validates and stores one message. Validation failures wrap domain.ErrValidation.
func (s *Service) Record(
	ctx context.Context, sessionID, userID string, role chat.Role, content string,
) (chat.Message, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	msg, err := chat.NewMessage(s.newID(), sessionID, userID, role, content, s.now())
	if err != nil {
		return chat.Message{}, domain.Invalid(err)
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return chat.Message{}, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// Messages returns up to limit most recent messages of a session, oldest first.
// A zero limit selects DefaultLimit.
func (s *Service) Messages(ctx context.Context, sessionID string, limit int) domain.Output {
	start := time.Now()

	if err := chat.ValidateSessionID(sessionID); err != nil {
		return s.fail(ctx, domain.Invalid(err), start)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return s.fail(ctx, domain.Invalid(fmt.Errorf("limit must be between 1 and %d, got %d",
			MaxLimit, limit)), start)
	}

	msgs, err := s.store.List(ctx, sessionID, limit)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("list messages: %w", err), start)
	}

	views := make([]View, 0, len(msgs))
	for i := range msgs {
		views = append(views, toView(msgs[i]))
	}

	outcome := metrics.OutcomeSuccess
	if len(views) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveInvocation(Connector, outcome, start)
	return domain.Success(views, len(views) == 0)
}

// Clear removes every message of a session.
func (s *Service) Clear(ctx context.Context, sessionID string) domain.Output {
	start := time.Now()

	if err := chat.ValidateSessionID(sessionID); err != nil {
		return s.fail(ctx, domain.Invalid(err), start)
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return s.fail(ctx, fmt.Errorf("clear session: %w", err), start)
	}

	metrics.ObserveInvocation(Connector, metrics.OutcomeSuccess, start)
	return domain.Success(sessionID, false)
}

func (s *Service) fail(ctx context.Context, err error, start time.Time) domain.Output {
	log := logpkg.ForConnector(ctx, s.logger, Connector)
	if errors.Is(err, domain.ErrValidation) {
		metrics.ObserveInvocation(Connector, metrics.OutcomeValidation, start)
		log.Debug("history request rejected", zap.Error(err))
		return domain.Failure(fmt.Sprintf("Invalid history parameters: %v", err))
	}
	metrics.ObserveInvocation(Connector, metrics.OutcomeTransport, start)
	log.Warn("history store failed", zap.Error(err))
	return domain.Failure(fmt.Sprintf("Request failed: %v", err))
}

func toView(m chat.Message) View {
	return View{
		ID:        m.ID(),
		SessionID: m.SessionID(),
		UserID:    m.UserID(),
		Role:      m.Role(),
		Content:   m.Content(),
		CreatedAt: m.CreatedAt(),
	}
}
