package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/store"
)

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var nc store.NewClient
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(nc.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	client, err := s.store.CreateClient(r.Context(), nc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("client created", "client_id", client.ID, "name", client.Name)
	respondJSON(w, http.StatusCreated, client)
}

func (s *Server) listClientSessions(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	sessions, err := s.store.ListClientSessions(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) listClientExtractions(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	extractions, err := s.store.ListClientExtractions(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, extractions)
}

func (s *Server) getSessionTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	// Confirm the session exists so an unknown id reads as 404 rather than an
	// empty transcript.
	if _, err := s.store.GetSessionWithClient(r.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries, err := s.store.ListSessionTranscript(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
