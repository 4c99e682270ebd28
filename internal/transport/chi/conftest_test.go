package chi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/flowconn/internal/domain/chat"
	domdoc "github.com/kailas-cloud/flowconn/internal/domain/document"
	"github.com/kailas-cloud/flowconn/internal/domain/search/catalog"
	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
	chatuc "github.com/kailas-cloud/flowconn/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/flowconn/internal/usecase/document"
	healthuc "github.com/kailas-cloud/flowconn/internal/usecase/health"
	historyuc "github.com/kailas-cloud/flowconn/internal/usecase/history"
	searchuc "github.com/kailas-cloud/flowconn/internal/usecase/search"
)

var errUpstream = errors.New("upstream down")

type mockSearcher struct {
	searchFn func(ctx context.Context, req *request.Request) (any, error)
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) (any, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return []any{map[string]any{"page_content": "hello"}}, nil
}

type mockCompleter struct {
	completeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, prompt)
	}
	return "echo: " + prompt, nil
}

type mockDocRepo struct {
	queryPageFn func(ctx context.Context, p domdoc.Page) ([]map[string]any, error)
}

func (m *mockDocRepo) QueryPage(ctx context.Context, p domdoc.Page) ([]map[string]any, error) {
	if m.queryPageFn != nil {
		return m.queryPageFn(ctx, p)
	}
	return []map[string]any{{"id": "1", "pageContent": "x"}}, nil
}

// memHistory is an in-memory history store keyed by session.
type memHistory struct {
	mu       sync.Mutex
	sessions map[string][]chat.Message
}

func (m *memHistory) Append(_ context.Context, msg chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string][]chat.Message)
	}
	m.sessions[msg.SessionID()] = append(m.sessions[msg.SessionID()], msg)
	return nil
}

func (m *memHistory) List(_ context.Context, sessionID string, limit int) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.sessions[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]chat.Message(nil), msgs...), nil
}

func (m *memHistory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

type fixture struct {
	searcher  *mockSearcher
	completer *mockCompleter
	docs      *mockDocRepo
	history   *memHistory
	health    *healthuc.Service
}

func newFixture() *fixture {
	return &fixture{
		searcher:  &mockSearcher{},
		completer: &mockCompleter{},
		docs:      &mockDocRepo{},
		history:   &memHistory{},
		health:    healthuc.New(),
	}
}

// router builds a server with every connector configured.
func (f *fixture) router(t *testing.T) chi.Router {
	t.Helper()

	cat, err := catalog.New([]string{"docs_36", "docs_28"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	search, err := searchuc.New(f.searcher, request.Limits{Catalog: cat, MaxResults: 10}, time.Second, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	history, err := historyuc.New(f.history, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	chatSvc, err := chatuc.New(f.completer, history, time.Second, nil)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	docs, err := documentuc.New(f.docs, "db", "pages", nil)
	if err != nil {
		t.Fatalf("documents: %v", err)
	}

	r := chi.NewRouter()
	NewServer(Services{
		Search:    search,
		Chat:      chatSvc,
		Documents: docs.WithPagination(10, 100),
		History:   history,
		Health:    f.health,
	}, "test", nil).Routes(r)
	return r
}
