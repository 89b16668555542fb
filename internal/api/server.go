package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/prompt"
	"github.com/eterno-app/eterno/internal/script"
	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

// Store is the full data-store surface the HTTP layer depends on. *store.Store
// satisfies it; tests use fakes.
type Store interface {
	ListClients(ctx context.Context) ([]store.Client, error)
	CreateClient(ctx context.Context, nc store.NewClient) (store.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (store.Client, error)
	CreateSession(ctx context.Context, clientID uuid.UUID, sessionNumber int) (store.Session, error)
	GetSessionWithClient(ctx context.Context, id uuid.UUID) (store.SessionWithClient, error)
	ListClientSessions(ctx context.Context, clientID uuid.UUID) ([]store.Session, error)
	MarkSessionInProgress(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	MarkSessionCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int, vapiCallID string) error
	AppendUtterance(ctx context.Context, sessionID uuid.UUID, speaker, content string, timestampMS int64) error
	ListSessionTranscript(ctx context.Context, sessionID uuid.UUID) ([]store.TranscriptEntry, error)
	ListClientExtractions(ctx context.Context, clientID uuid.UUID) ([]store.Extraction, error)
}

// CallPlatform is the outbound slice of the voice platform: deep links for web
// calls and the dial-out endpoint for phone calls.
type CallPlatform interface {
	WebCallURL(meta vapi.Metadata) (string, error)
	CreatePhoneCall(ctx context.Context, phone string, meta vapi.Metadata) (vapi.CreatedCall, error)
}

// Publisher hands completed sessions to the extraction processor. Publish
// failures are logged by the webhook handler and never surfaced to the caller.
type Publisher interface {
	Publish(subject string, data any) error
}

// ServerConfig carries the per-deployment values baked into assistant configs.
type ServerConfig struct {
	Port    int
	Model   string
	VoiceID string
}

type Server struct {
	router    *chi.Mux
	cfg       ServerConfig
	store     Store
	scripts   *script.Registry
	assembler *prompt.Assembler
	calls     CallPlatform
	publisher Publisher
	logger    *slog.Logger
}

func NewServer(cfg ServerConfig, st Store, scripts *script.Registry, assembler *prompt.Assembler, calls CallPlatform, publisher Publisher, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		cfg:       cfg,
		store:     st,
		scripts:   scripts,
		assembler: assembler,
		calls:     calls,
		publisher: publisher,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Post("/api/vapi-webhook", s.handleWebhook)
	router.Get("/api/clients", s.listClients)
	router.Post("/api/clients", s.createClient)
	router.Get("/api/clients/{id}/sessions", s.listClientSessions)
	router.Get("/api/clients/{id}/extractions", s.listClientExtractions)
	router.Get("/api/sessions/{id}/transcript", s.getSessionTranscript)
	router.Post("/api/calls/web", s.createWebCall)
	router.Post("/api/calls/phone", s.createPhoneCall)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
