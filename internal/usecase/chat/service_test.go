package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/flowconn/internal/domain"
	domchat "github.com/kailas-cloud/flowconn/internal/domain/chat"
)

// --- Mocks ---

type mockCompleter struct {
	text   string
	err    error
	prompt string
	calls  int
	delay  time.Duration
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	time.Sleep(m.delay)
	return m.text, m.err
}

type recorded struct {
	session string
	user    string
	role    domchat.Role
	content string
}

type mockRecorder struct {
	turns []recorded
	err   error
}

func (m *mockRecorder) Record(
	ctx context.Context, sessionID, userID string, role domchat.Role, content string,
) (domchat.Message, error) {
	if err := ctx.Err(); err != nil {
		return domchat.Message{}, err
	}
	if m.err != nil {
		return domchat.Message{}, m.err
	}
	m.turns = append(m.turns, recorded{sessionID, userID, role, content})
	return domchat.Reconstruct("id", sessionID, userID, role, content, time.Now()), nil
}

func newTestService(t *testing.T, c Completer, r Recorder) *Service {
	t.Helper()
	svc, err := New(c, r, time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

// --- Tests ---

func TestNew_ConfigurationErrors(t *testing.T) {
	if _, err := New(nil, nil, time.Second, nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("nil completer: err = %v", err)
	}
	if _, err := New(&mockCompleter{}, nil, 0, nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("zero timeout: err = %v", err)
	}
}

func TestComplete_JoinsAndTrimsPrompt(t *testing.T) {
	c := &mockCompleter{text: "Use the console."}
	svc := newTestService(t, c, nil)

	out := svc.Complete(context.Background(), Input{
		SystemMessage: "  You are a support assistant. ",
		InputValue:    "How do I add a client?  ",
	})

	if out.Status != domain.StatusSuccess || out.Value != "Use the console." {
		t.Errorf("out = %+v", out)
	}
	if c.prompt != "You are a support assistant. How do I add a client?" {
		t.Errorf("prompt = %q", c.prompt)
	}
}

func TestComplete_EmptyInput(t *testing.T) {
	c := &mockCompleter{}
	svc := newTestService(t, c, nil)

	out := svc.Complete(context.Background(), Input{SystemMessage: " ", InputValue: "\n"})
	if out.Status != "Invalid chat input: input is empty" {
		t.Errorf("status = %q", out.Status)
	}
	if c.calls != 0 {
		t.Errorf("completer called %d times", c.calls)
	}
}

func TestComplete_InvalidSession(t *testing.T) {
	c := &mockCompleter{}
	svc := newTestService(t, c, &mockRecorder{})

	out := svc.Complete(context.Background(), Input{InputValue: "hi", SessionID: "bad session"})
	if !strings.HasPrefix(out.Status, "Invalid chat input: ") {
		t.Errorf("status = %q", out.Status)
	}
	if c.calls != 0 {
		t.Errorf("completer called %d times", c.calls)
	}
}

func TestComplete_ProviderFailure(t *testing.T) {
	c := &mockCompleter{err: &domain.StatusError{StatusCode: 500}}
	r := &mockRecorder{}
	svc := newTestService(t, c, r)

	out := svc.Complete(context.Background(), Input{InputValue: "hi", SessionID: "s1"})
	if out.Status != "Request failed: upstream returned status 500" {
		t.Errorf("status = %q", out.Status)
	}
	if len(r.turns) != 0 {
		t.Errorf("recorded %d turns on failure", len(r.turns))
	}
}

func TestComplete_EmptyReply(t *testing.T) {
	svc := newTestService(t, &mockCompleter{text: ""}, nil)

	out := svc.Complete(context.Background(), Input{InputValue: "hi"})
	if out.Status != domain.StatusNoDocuments || out.Failed() {
		t.Errorf("out = %+v", out)
	}
}

func TestComplete_RecordsSession(t *testing.T) {
	r := &mockRecorder{}
	svc := newTestService(t, &mockCompleter{text: "answer"}, r)

	svc.Complete(context.Background(), Input{InputValue: "question", SessionID: "s1", UserID: "u1"})

	want := []recorded{
		{"s1", "u1", domchat.RoleUser, "question"},
		{"s1", "u1", domchat.RoleAssistant, "answer"},
	}
	if len(r.turns) != len(want) {
		t.Fatalf("turns = %+v", r.turns)
	}
	for i := range want {
		if r.turns[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, r.turns[i], want[i])
		}
	}
}

func TestComplete_RecordingFailureIgnored(t *testing.T) {
	r := &mockRecorder{err: errors.New("store down")}
	svc := newTestService(t, &mockCompleter{text: "answer"}, r)

	out := svc.Complete(context.Background(), Input{InputValue: "q", SessionID: "s1"})
	if out.Status != domain.StatusSuccess {
		t.Errorf("status = %q", out.Status)
	}
}

func TestComplete_NoRecorderConfigured(t *testing.T) {
	svc := newTestService(t, &mockCompleter{text: "answer"}, nil)

	out := svc.Complete(context.Background(), Input{InputValue: "q", SessionID: "s1"})
	if out.Status != domain.StatusSuccess {
		t.Errorf("status = %q", out.Status)
	}
}

func TestComplete_RecordsReplyArrivingAtDeadline(t *testing.T) {
	c := &mockCompleter{text: "late answer", delay: 80 * time.Millisecond}
	r := &mockRecorder{}
	svc, err := New(c, r, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out := svc.Complete(context.Background(), Input{InputValue: "hi", SessionID: "s-1"})

	if out.Status != domain.StatusSuccess {
		t.Fatalf("status = %q", out.Status)
	}
	if len(r.turns) != 2 {
		t.Fatalf("recorded %d turns, want 2", len(r.turns))
	}
	if r.turns[1].content != "late answer" {
		t.Errorf("assistant turn = %q", r.turns[1].content)
	}
}

func TestComplete_RecordingIgnoresCallerCancellation(t *testing.T) {
	r := &mockRecorder{}
	svc := newTestService(t, &mockCompleter{text: "ok"}, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Complete(ctx, Input{InputValue: "hi", SessionID: "s-1"})
	if len(r.turns) != 2 {
		t.Errorf("recorded %d turns, want 2", len(r.turns))
	}
}
