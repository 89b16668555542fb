//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_ClientRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateClient(ctx, NewClient{
		Name:  "Integration Test Client",
		Phone: "+15551230000",
		Email: "it@example.com",
	})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	clients, err := s.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	found := false
	for _, c := range clients {
		if c.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("created client %s not present in listing", created.ID)
	}

	got, err := s.GetClient(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("expected name %q, got %q", created.Name, got.Name)
	}
}

func TestIntegration_SessionLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, NewClient{Name: "Lifecycle Client"})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	sess, err := s.CreateSession(ctx, client.ID, 3)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.Status != StatusPending {
		t.Errorf("expected pending session, got %q", sess.Status)
	}

	started := time.Now().UTC()
	if err := s.MarkSessionInProgress(ctx, sess.ID, started); err != nil {
		t.Fatalf("MarkSessionInProgress failed: %v", err)
	}

	if err := s.MarkSessionCompleted(ctx, sess.ID, started.Add(30*time.Minute), 30, "call-abc"); err != nil {
		t.Fatalf("MarkSessionCompleted failed: %v", err)
	}

	got, err := s.GetSessionWithClient(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSessionWithClient failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", got.Status)
	}
	if got.DurationMinutes != 30 {
		t.Errorf("expected 30 minutes, got %d", got.DurationMinutes)
	}
	if got.VapiCallID != "call-abc" {
		t.Errorf("expected call-abc, got %q", got.VapiCallID)
	}
	if got.Client.Name != "Lifecycle Client" {
		t.Errorf("join returned wrong client: %q", got.Client.Name)
	}
}

func TestIntegration_TranscriptOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, NewClient{Name: "Transcript Client"})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	sess, err := s.CreateSession(ctx, client.ID, 1)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Two utterances share a timestamp; seq must preserve arrival order.
	for i, u := range []struct {
		speaker string
		content string
		ts      int64
	}{
		{SpeakerAgent, "hello", 1000},
		{SpeakerClient, "hi there", 2000},
		{SpeakerAgent, "first at tie", 2000},
	} {
		if err := s.AppendUtterance(ctx, sess.ID, u.speaker, u.content, u.ts); err != nil {
			t.Fatalf("AppendUtterance %d failed: %v", i, err)
		}
	}

	entries, err := s.ListSessionTranscript(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListSessionTranscript failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Content != "hi there" || entries[2].Content != "first at tie" {
		t.Errorf("tie on timestamp_ms did not preserve arrival order: %q then %q",
			entries[1].Content, entries[2].Content)
	}
}

func TestIntegration_ExtractionQueries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, NewClient{Name: "Extraction Client"})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	sess, err := s.CreateSession(ctx, client.ID, 2)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for _, e := range []struct {
		category   string
		importance int
	}{
		{"story", 9},
		{"value", 7},
		{"emotion", 4},
	} {
		if _, err := s.InsertExtraction(ctx, client.ID, sess.ID, e.category, "content for "+e.category, e.importance); err != nil {
			t.Fatalf("InsertExtraction %s failed: %v", e.category, err)
		}
	}

	all, err := s.ListClientExtractions(ctx, client.ID)
	if err != nil {
		t.Fatalf("ListClientExtractions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 extractions, got %d", len(all))
	}
	if all[0].Importance < all[1].Importance || all[1].Importance < all[2].Importance {
		t.Errorf("extractions not ordered by importance desc")
	}

	important, err := s.RecentImportantExtractions(ctx, client.ID, 6, 15)
	if err != nil {
		t.Fatalf("RecentImportantExtractions failed: %v", err)
	}
	if len(important) != 2 {
		t.Errorf("expected 2 extractions at importance >= 6, got %d", len(important))
	}
	for _, e := range important {
		if e.Importance < 6 {
			t.Errorf("extraction %s below importance threshold: %d", e.ID, e.Importance)
		}
	}
}
