package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/prompt"
	"github.com/eterno-app/eterno/internal/script"
	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

type completedCall struct {
	durationMinutes int
	vapiCallID      string
}

// fakeStore is an in-memory Store. It also satisfies prompt.ExtractionSource
// so the same instance can back the assembler.
type fakeStore struct {
	clients     map[uuid.UUID]store.Client
	sessions    map[uuid.UUID]store.SessionWithClient
	transcript  []store.TranscriptEntry
	extractions []store.Extraction
	inProgress  map[uuid.UUID]time.Time
	completed   map[uuid.UUID]completedCall
	seq         int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:    make(map[uuid.UUID]store.Client),
		sessions:   make(map[uuid.UUID]store.SessionWithClient),
		inProgress: make(map[uuid.UUID]time.Time),
		completed:  make(map[uuid.UUID]completedCall),
	}
}

func (f *fakeStore) addClient(name, phone string) store.Client {
	c := store.Client{ID: uuid.New(), Name: name, Phone: phone, CreatedAt: time.Now().UTC()}
	f.clients[c.ID] = c
	return c
}

func (f *fakeStore) addSession(client store.Client, sessionNumber int) store.SessionWithClient {
	s := store.SessionWithClient{
		Session: store.Session{
			ID:            uuid.New(),
			ClientID:      client.ID,
			SessionNumber: sessionNumber,
			Status:        store.StatusPending,
			CreatedAt:     time.Now().UTC(),
		},
		Client: client,
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeStore) ListClients(ctx context.Context) ([]store.Client, error) {
	out := make([]store.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) CreateClient(ctx context.Context, nc store.NewClient) (store.Client, error) {
	c := store.Client{ID: uuid.New(), Name: nc.Name, Phone: nc.Phone, Email: nc.Email, CreatedAt: time.Now().UTC()}
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetClient(ctx context.Context, id uuid.UUID) (store.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return store.Client{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, clientID uuid.UUID, sessionNumber int) (store.Session, error) {
	s := f.addSession(f.clients[clientID], sessionNumber)
	return s.Session, nil
}

func (f *fakeStore) GetSessionWithClient(ctx context.Context, id uuid.UUID) (store.SessionWithClient, error) {
	s, ok := f.sessions[id]
	if !ok {
		return store.SessionWithClient{}, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListClientSessions(ctx context.Context, clientID uuid.UUID) ([]store.Session, error) {
	var out []store.Session
	for _, s := range f.sessions {
		if s.ClientID == clientID {
			out = append(out, s.Session)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSessionInProgress(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	f.inProgress[id] = startedAt
	return nil
}

func (f *fakeStore) MarkSessionCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int, vapiCallID string) error {
	f.completed[id] = completedCall{durationMinutes: durationMinutes, vapiCallID: vapiCallID}
	return nil
}

func (f *fakeStore) AppendUtterance(ctx context.Context, sessionID uuid.UUID, speaker, content string, timestampMS int64) error {
	f.seq++
	f.transcript = append(f.transcript, store.TranscriptEntry{
		Seq:         f.seq,
		SessionID:   sessionID,
		Speaker:     speaker,
		Content:     content,
		TimestampMS: timestampMS,
	})
	return nil
}

func (f *fakeStore) ListSessionTranscript(ctx context.Context, sessionID uuid.UUID) ([]store.TranscriptEntry, error) {
	var out []store.TranscriptEntry
	for _, e := range f.transcript {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListClientExtractions(ctx context.Context, clientID uuid.UUID) ([]store.Extraction, error) {
	var out []store.Extraction
	for _, e := range f.extractions {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentImportantExtractions(ctx context.Context, clientID uuid.UUID, minImportance, limit int) ([]store.Extraction, error) {
	var out []store.Extraction
	for _, e := range f.extractions {
		if e.ClientID == clientID && e.Importance >= minImportance {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCalls struct {
	webMeta   vapi.Metadata
	phoneMeta vapi.Metadata
	phone     string
	err       error
}

func (f *fakeCalls) WebCallURL(meta vapi.Metadata) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.webMeta = meta
	return "https://vapi.ai/call?assistantId=test", nil
}

func (f *fakeCalls) CreatePhoneCall(ctx context.Context, phone string, meta vapi.Metadata) (vapi.CreatedCall, error) {
	if f.err != nil {
		return vapi.CreatedCall{}, f.err
	}
	f.phone = phone
	f.phoneMeta = meta
	return vapi.CreatedCall{ID: "call-123", Status: "queued"}, nil
}

type fakePublisher struct {
	subjects []string
	payloads []any
}

func (f *fakePublisher) Publish(subject string, data any) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func newTestServer(t *testing.T, fs *fakeStore) (*Server, *fakeCalls, *fakePublisher) {
	t.Helper()
	scripts, err := script.Load()
	if err != nil {
		t.Fatalf("failed to load scripts: %v", err)
	}
	calls := &fakeCalls{}
	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := ServerConfig{Port: 8760, Model: "claude-sonnet-4-20250514", VoiceID: "test-voice"}
	srv := NewServer(cfg, fs, scripts, prompt.NewAssembler(fs), calls, publisher, logger)
	return srv, calls, publisher
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, newFakeStore())

	w := doJSON(t, srv, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, newFakeStore())

	w := doJSON(t, srv, "GET", "/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCreateAndListClients(t *testing.T) {
	fs := newFakeStore()
	srv, _, _ := newTestServer(t, fs)

	w := doJSON(t, srv, "POST", "/api/clients", store.NewClient{Name: "Maria Silva", Phone: "+5511999999999"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created store.Client
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Name != "Maria Silva" {
		t.Errorf("expected name Maria Silva, got %q", created.Name)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil client id")
	}

	w = doJSON(t, srv, "GET", "/api/clients", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var clients []store.Client
	if err := json.NewDecoder(w.Body).Decode(&clients); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != created.ID {
		t.Errorf("expected listed client %s, got %+v", created.ID, clients)
	}
}

func TestCreateClientRequiresName(t *testing.T) {
	srv, _, _ := newTestServer(t, newFakeStore())

	w := doJSON(t, srv, "POST", "/api/clients", store.NewClient{Phone: "+5511999999999"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	srv, _, _ := newTestServer(t, newFakeStore())

	w := doJSON(t, srv, "GET", "/api/sessions/"+uuid.NewString()+"/transcript", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
