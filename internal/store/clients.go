package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client is an interviewee's identity and contact record.
type Client struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone,omitempty"`
	Email              string    `json:"email,omitempty"`
	BirthDate          string    `json:"birth_date,omitempty"`
	BirthPlace         string    `json:"birth_place,omitempty"`
	FamilyContactName  string    `json:"family_contact_name,omitempty"`
	FamilyContactPhone string    `json:"family_contact_phone,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewClient holds the caller-supplied fields for client creation.
type NewClient struct {
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	BirthDate          string `json:"birth_date"`
	BirthPlace         string `json:"birth_place"`
	FamilyContactName  string `json:"family_contact_name"`
	FamilyContactPhone string `json:"family_contact_phone"`
}

func (s *Store) CreateClient(ctx context.Context, nc NewClient) (Client, error) {
	c := Client{
		ID:                 uuid.New(),
		Name:               nc.Name,
		Phone:              nc.Phone,
		Email:              nc.Email,
		BirthDate:          nc.BirthDate,
		BirthPlace:         nc.BirthPlace,
		FamilyContactName:  nc.FamilyContactName,
		FamilyContactPhone: nc.FamilyContactPhone,
		CreatedAt:          time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO clients (id, name, phone, email, birth_date, birth_place, family_contact_name, family_contact_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Phone, c.Email, c.BirthDate, c.BirthPlace, c.FamilyContactName, c.FamilyContactPhone, c.CreatedAt,
	)
	if err != nil {
		return Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, phone, email, birth_date, birth_place, family_contact_name, family_contact_phone, created_at
		FROM clients
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.BirthDate, &c.BirthPlace, &c.FamilyContactName, &c.FamilyContactPhone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (Client, error) {
	var c Client
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, birth_date, birth_place, family_contact_name, family_contact_phone, created_at
		FROM clients
		WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.BirthDate, &c.BirthPlace, &c.FamilyContactName, &c.FamilyContactPhone, &c.CreatedAt)
	if err != nil {
		return Client{}, fmt.Errorf("get client %s: %w", id, notFoundOr(err))
	}
	return c, nil
}
