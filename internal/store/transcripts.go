package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Speaker tags as stored. The platform's "assistant" role maps to agent,
// everything else to client.
const (
	SpeakerAgent  = "agent"
	SpeakerClient = "client"
)

// TranscriptEntry is one utterance within a session. Entries are append-only;
// Seq is a serial assigned by the database so timestamp ties keep arrival order.
type TranscriptEntry struct {
	Seq         int64     `json:"seq"`
	SessionID   uuid.UUID `json:"session_id"`
	Speaker     string    `json:"speaker"`
	Content     string    `json:"content"`
	TimestampMS int64     `json:"timestamp_ms"`
}

// AppendUtterance inserts one utterance. No dedup is attempted: a replayed
// transcript webhook appends duplicate rows.
func (s *Store) AppendUtterance(ctx context.Context, sessionID uuid.UUID, speaker, content string, timestampMS int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transcripts (session_id, speaker, content, timestamp_ms)
		VALUES ($1, $2, $3, $4)`,
		sessionID, speaker, content, timestampMS,
	)
	if err != nil {
		return fmt.Errorf("insert utterance: %w", err)
	}
	return nil
}

// ListSessionTranscript returns a session's utterances in conversational order.
func (s *Store) ListSessionTranscript(ctx context.Context, sessionID uuid.UUID) ([]TranscriptEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, session_id, speaker, content, timestamp_ms
		FROM transcripts
		WHERE session_id = $1
		ORDER BY timestamp_ms, seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transcript: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		if err := rows.Scan(&e.Seq, &e.SessionID, &e.Speaker, &e.Content, &e.TimestampMS); err != nil {
			return nil, fmt.Errorf("scan utterance: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
