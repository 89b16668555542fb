package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Extraction is one durable insight derived from a completed session's
// transcript. Rows are written once by the extractor and never mutated.
type Extraction struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Store) InsertExtraction(ctx context.Context, clientID, sessionID uuid.UUID, category, content string, importance int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extractions (id, client_id, session_id, category, content, importance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, clientID, sessionID, category, content, importance, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert extraction: %w", err)
	}
	return id, nil
}

// ListClientExtractions returns all of a client's extractions, most important
// first.
func (s *Store) ListClientExtractions(ctx context.Context, clientID uuid.UUID) ([]Extraction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, session_id, category, content, importance, created_at
		FROM extractions
		WHERE client_id = $1
		ORDER BY importance DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()
	return scanExtractions(rows)
}

// RecentImportantExtractions returns up to limit of the newest extractions for
// a client at or above the given importance. Feeds the previous-context digest.
func (s *Store) RecentImportantExtractions(ctx context.Context, clientID uuid.UUID, minImportance, limit int) ([]Extraction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, session_id, category, content, importance, created_at
		FROM extractions
		WHERE client_id = $1 AND importance >= $2
		ORDER BY created_at DESC
		LIMIT $3`, clientID, minImportance, limit)
	if err != nil {
		return nil, fmt.Errorf("recent extractions: %w", err)
	}
	defer rows.Close()
	return scanExtractions(rows)
}

func scanExtractions(rows pgx.Rows) ([]Extraction, error) {
	var extractions []Extraction
	for rows.Next() {
		var e Extraction
		if err := rows.Scan(&e.ID, &e.ClientID, &e.SessionID, &e.Category, &e.Content, &e.Importance, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		extractions = append(extractions, e)
	}
	return extractions, rows.Err()
}
