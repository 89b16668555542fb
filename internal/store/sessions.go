package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses. A session only ever moves forward through these.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Session is one interview occasion for a client, tied to a script ordinal.
type Session struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"client_id"`
	SessionNumber   int        `json:"session_number"`
	Status          string     `json:"status"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	VapiCallID      string     `json:"vapi_call_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SessionWithClient carries a session joined with its owning client.
type SessionWithClient struct {
	Session
	Client Client `json:"client"`
}

// CreateSession inserts a new pending session. Duplicate session numbers for
// a client are tolerated; webhook handlers key on the session id alone.
func (s *Store) CreateSession(ctx context.Context, clientID uuid.UUID, sessionNumber int) (Session, error) {
	sess := Session{
		ID:            uuid.New(),
		ClientID:      clientID,
		SessionNumber: sessionNumber,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, client_id, session_number, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.ClientID, sess.SessionNumber, sess.Status, sess.CreatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSessionWithClient fetches a session joined with its client record.
func (s *Store) GetSessionWithClient(ctx context.Context, id uuid.UUID) (SessionWithClient, error) {
	var sc SessionWithClient
	err := s.pool.QueryRow(ctx, `
		SELECT s.id, s.client_id, s.session_number, s.status, s.started_at, s.ended_at,
		       COALESCE(s.duration_minutes, 0), COALESCE(s.vapi_call_id, ''), s.created_at,
		       c.id, c.name, c.phone, c.email, c.birth_date, c.birth_place,
		       c.family_contact_name, c.family_contact_phone, c.created_at
		FROM sessions s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = $1`, id,
	).Scan(
		&sc.ID, &sc.ClientID, &sc.SessionNumber, &sc.Status, &sc.StartedAt, &sc.EndedAt,
		&sc.DurationMinutes, &sc.VapiCallID, &sc.CreatedAt,
		&sc.Client.ID, &sc.Client.Name, &sc.Client.Phone, &sc.Client.Email, &sc.Client.BirthDate,
		&sc.Client.BirthPlace, &sc.Client.FamilyContactName, &sc.Client.FamilyContactPhone, &sc.Client.CreatedAt,
	)
	if err != nil {
		return SessionWithClient{}, fmt.Errorf("get session %s: %w", id, notFoundOr(err))
	}
	return sc, nil
}

// ListClientSessions returns a client's sessions ordered by script ordinal.
func (s *Store) ListClientSessions(ctx context.Context, clientID uuid.UUID) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, client_id, session_number, status, started_at, ended_at,
		       COALESCE(duration_minutes, 0), COALESCE(vapi_call_id, ''), created_at
		FROM sessions
		WHERE client_id = $1
		ORDER BY session_number`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.ClientID, &sess.SessionNumber, &sess.Status, &sess.StartedAt,
			&sess.EndedAt, &sess.DurationMinutes, &sess.VapiCallID, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// MarkSessionInProgress records the start of a call against a pending session.
func (s *Store) MarkSessionInProgress(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions SET status = $1, started_at = $2
		WHERE id = $3`,
		StatusInProgress, startedAt, id,
	)
	if err != nil {
		return fmt.Errorf("mark session in progress: %w", err)
	}
	return nil
}

// MarkSessionCompleted records the end-of-call report against a session.
func (s *Store) MarkSessionCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time, durationMinutes int, vapiCallID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions SET status = $1, ended_at = $2, duration_minutes = $3, vapi_call_id = $4
		WHERE id = $5`,
		StatusCompleted, endedAt, durationMinutes, vapiCallID, id,
	)
	if err != nil {
		return fmt.Errorf("mark session completed: %w", err)
	}
	return nil
}
