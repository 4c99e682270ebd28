package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/domain"
	domchat "github.com/kailas-cloud/flowconn/internal/domain/chat"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
)

// Connector is the connector name used in logs and metrics.
const Connector = "chat"

// RecordTimeout bounds writing both turns of an exchange to history.
const RecordTimeout = 5 * time.Second

// Input is the host-supplied input of one chat invocation.
type Input struct {
	SystemMessage string `json:"system_message,omitempty"`
	InputValue    string `json:"input_value"`
	SessionID     string `json:"session_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
}

// Service sends prompts to a chat provider and optionally records the exchange.
type Service struct {
	completer Completer
	recorder  Recorder
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a chat service. recorder may be nil when history is disabled.
func New(completer Completer, recorder Recorder, timeout time.Duration, logger *zap.Logger) (*Service, error) {
	if completer == nil {
		return nil, domain.NewConfigurationError(Connector, "provider", "is required")
	}
	if timeout <= 0 {
		return nil, domain.NewConfigurationError(Connector, "timeout", "must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, recorder: recorder, timeout: timeout, logger: logger}, nil
}

// Complete joins the system message and input, asks the provider once and returns its text.
// With a session id both turns are recorded; recording failures are logged, not returned.
func (s *Service) Complete(ctx context.Context, in Input) domain.Output {
	start := time.Now()
	log := logpkg.ForConnector(ctx, s.logger, Connector)

	prompt, err := s.validate(in)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeValidation, start)
		log.Debug("chat rejected", zap.Error(err))
		return domain.Failure(fmt.Sprintf("Invalid chat input: %v", err))
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	text, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		metrics.ObserveInvocation(Connector, metrics.OutcomeTransport, start)
		log.Warn("chat request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return domain.Failure(fmt.Sprintf("Request failed: %v", err))
	}

	if in.SessionID != "" {
		// the completion may have used up most of callCtx
		recCtx, cancelRec := context.WithTimeout(context.WithoutCancel(ctx), RecordTimeout)
		s.record(recCtx, log, in, prompt, text)
		cancelRec()
	}

	empty := text == ""
	outcome := metrics.OutcomeSuccess
	if empty {
		outcome = metrics.OutcomeEmpty
	}
	metrics.ObserveInvocation(Connector, outcome, start)
	log.Debug("chat completed", zap.Int("response_len", len(text)), zap.Duration("duration", time.Since(start)))

	return domain.Success(text, empty)
}

func (s *Service) validate(in Input) (string, error) {
	prompt := strings.TrimSpace(in.SystemMessage + in.InputValue)
	if prompt == "" {
		return "", errors.New("input is empty")
	}
	if len(prompt) > domchat.MaxContentSize {
		return "", fmt.Errorf("input too large (max %d bytes)", domchat.MaxContentSize)
	}
	if in.SessionID != "" {
		if err := domchat.ValidateSessionID(in.SessionID); err != nil {
			return "", err
		}
	}
	return prompt, nil
}

func (s *Service) record(ctx context.Context, log *zap.Logger, in Input, prompt, reply string) {
	if s.recorder == nil {
		log.Warn("session history requested but no history store is configured",
			zap.String("session_id", in.SessionID))
		return
	}
	if _, err := s.recorder.Record(ctx, in.SessionID, in.UserID, domchat.RoleUser, prompt); err != nil {
		log.Warn("failed to record user message", zap.String("session_id", in.SessionID), zap.Error(err))
		return
	}
	if reply == "" {
		return
	}
	if _, err := s.recorder.Record(ctx, in.SessionID, in.UserID, domchat.RoleAssistant, reply); err != nil {
		log.Warn("failed to record assistant message", zap.String("session_id", in.SessionID), zap.Error(err))
	}
}
