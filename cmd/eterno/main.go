package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eterno-app/eterno/internal/anthropic"
	"github.com/eterno-app/eterno/internal/api"
	"github.com/eterno-app/eterno/internal/config"
	"github.com/eterno-app/eterno/internal/events"
	"github.com/eterno-app/eterno/internal/extractor"
	"github.com/eterno-app/eterno/internal/processor"
	"github.com/eterno-app/eterno/internal/prompt"
	"github.com/eterno-app/eterno/internal/script"
	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("eterno starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Interview scripts
	scripts, err := script.Load()
	if err != nil {
		slog.Error("failed to load interview scripts", "error", err)
		os.Exit(1)
	}
	slog.Info("interview scripts loaded", "sessions", script.SessionCount)

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	// Extraction pipeline behind NATS
	ext := extractor.New(llm, db, slog.Default())

	eventsClient, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	proc := processor.New(ext, slog.Default())
	if err := eventsClient.Subscribe(events.SubjectSessionCompleted, proc.HandleSessionCompleted); err != nil {
		slog.Error("failed to subscribe to session events", "error", err)
		os.Exit(1)
	}

	// Voice platform client
	if cfg.VapiAPIKey == "" {
		slog.Warn("VAPI_API_KEY not set — phone calls will fail")
	}
	calls := vapi.NewClient(cfg.VapiAPIKey, cfg.VapiBaseURL, cfg.VapiAssistantID, cfg.VapiPhoneNumberID)

	// HTTP API
	srv := api.NewServer(api.ServerConfig{
		Port:    cfg.Port,
		Model:   cfg.AnthropicModel,
		VoiceID: cfg.VoiceID,
	}, db, scripts, prompt.NewAssembler(db), calls, eventsClient, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("eterno ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("eterno stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
