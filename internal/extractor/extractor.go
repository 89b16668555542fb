// Package extractor turns a completed session's transcript into categorized,
// scored insight rows via a single completion call.
//
// Extraction is best-effort enrichment: any failure is reported to the caller
// for logging and the whole pass is abandoned with no partial persistence and
// no retry.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/anthropic"
	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

const maxResponseTokens = 3000

// Store is the slice of the data store the extractor needs: resolving a
// session's owning client and persisting insight rows.
type Store interface {
	GetSessionWithClient(ctx context.Context, id uuid.UUID) (store.SessionWithClient, error)
	InsertExtraction(ctx context.Context, clientID, sessionID uuid.UUID, category, content string, importance int) (uuid.UUID, error)
}

type Extractor struct {
	llm    *anthropic.Client
	store  Store
	logger *slog.Logger
}

func New(llm *anthropic.Client, st Store, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, store: st, logger: logger}
}

// insightItem is one extracted element. Items missing content or importance
// are dropped, never persisted.
type insightItem struct {
	Content    string `json:"content"`
	Importance int    `json:"importance"`
}

type llmResponse struct {
	Stories       []insightItem `json:"stories"`
	Expressions   []insightItem `json:"expressions"`
	Values        []insightItem `json:"values"`
	Emotions      []insightItem `json:"emotions"`
	Relationships []insightItem `json:"relationships"`
	Advice        []insightItem `json:"advice"`
}

// RenderTranscript flattens utterances into speaker-labeled lines using the
// platform role tag: "assistant" is the interviewer, everything else the
// subject.
func RenderTranscript(utterances []vapi.Utterance) string {
	lines := make([]string, len(utterances))
	for i, u := range utterances {
		speaker := "Subject"
		if u.Role == "assistant" {
			speaker = "Interviewer"
		}
		lines[i] = fmt.Sprintf("%s: %s", speaker, u.Text)
	}
	return strings.Join(lines, "\n")
}

// ProcessTranscript runs one extraction pass for a completed session and
// persists every qualifying item.
func (e *Extractor) ProcessTranscript(ctx context.Context, sessionID uuid.UUID, utterances []vapi.Utterance) error {
	transcript := RenderTranscript(utterances)

	e.logger.Info("extracting insights",
		"session_id", sessionID,
		"utterances", len(utterances),
		"transcript_len", len(transcript),
	)

	messages := []anthropic.Message{
		{Role: "user", Content: fmt.Sprintf(extractionPrompt, transcript)},
	}
	raw, err := e.llm.Complete(ctx, "", messages, maxResponseTokens)
	if err != nil {
		return fmt.Errorf("llm extraction: %w", err)
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return fmt.Errorf("parse extraction: %w", err)
	}

	sess, err := e.store.GetSessionWithClient(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}

	categories := []struct {
		name  string
		items []insightItem
	}{
		{"stories", resp.Stories},
		{"expressions", resp.Expressions},
		{"values", resp.Values},
		{"emotions", resp.Emotions},
		{"relationships", resp.Relationships},
		{"advice", resp.Advice},
	}

	persisted := 0
	for _, cat := range categories {
		// One trailing "s" stripped: "stories" is stored as "storie".
		category := strings.TrimSuffix(cat.name, "s")
		for _, item := range cat.items {
			if item.Content == "" || item.Importance < 1 || item.Importance > 10 {
				continue
			}
			if _, err := e.store.InsertExtraction(ctx, sess.ClientID, sessionID, category, item.Content, item.Importance); err != nil {
				return fmt.Errorf("persist %s extraction: %w", category, err)
			}
			persisted++
		}
	}

	e.logger.Info("insights extracted", "session_id", sessionID, "persisted", persisted)
	return nil
}

// stripFences removes markdown code-fence markers the model sometimes wraps
// around the JSON despite instructions.
func stripFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}
