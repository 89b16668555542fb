// Package processor consumes session-completed events and runs extraction.
//
// Extraction is invisible to the webhook caller: every failure here is logged
// and swallowed. The session stays completed either way and nothing retries.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/events"
	"github.com/eterno-app/eterno/internal/extractor"
)

type Processor struct {
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func New(ext *extractor.Extractor, logger *slog.Logger) *Processor {
	return &Processor{extractor: ext, logger: logger}
}

// HandleSessionCompleted is the NATS handler for eterno.session.completed.
func (p *Processor) HandleSessionCompleted(subject string, data []byte) {
	ctx := context.Background()

	var evt events.SessionCompletedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse session completed event", "error", err)
		return
	}

	sessionID, err := uuid.Parse(evt.SessionID)
	if err != nil {
		p.logger.Error("invalid session id", "session_id", evt.SessionID, "error", err)
		return
	}
	if len(evt.Transcript) == 0 {
		p.logger.Info("session completed without transcript, skipping extraction", "session_id", sessionID)
		return
	}

	p.logger.Info("processing completed session",
		"session_id", sessionID,
		"call_id", evt.CallID,
		"utterances", len(evt.Transcript),
	)

	if err := p.extractor.ProcessTranscript(ctx, sessionID, evt.Transcript); err != nil {
		p.logger.Error("extraction failed", "session_id", sessionID, "error", err)
		return
	}

	p.logger.Info("session processed", "session_id", sessionID)
}
