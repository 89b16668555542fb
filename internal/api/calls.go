package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

type callRequest struct {
	ClientID      string `json:"client_id"`
	SessionNumber int    `json:"session_number"`
}

// resolveCallRequest validates the shared preconditions of both call kinds:
// a decodable body, a known client and a session number inside the program.
// missingClientStatus is per-route: web calls 404 an unknown client, phone
// calls 400 it.
func (s *Server) resolveCallRequest(w http.ResponseWriter, r *http.Request, missingClientStatus int) (store.Client, int, bool) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return store.Client{}, 0, false
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return store.Client{}, 0, false
	}
	if req.SessionNumber < 1 || req.SessionNumber > 20 {
		respondError(w, http.StatusBadRequest, "session_number must be between 1 and 20")
		return store.Client{}, 0, false
	}

	client, err := s.store.GetClient(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, missingClientStatus, "client not found")
			return store.Client{}, 0, false
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return store.Client{}, 0, false
	}
	return client, req.SessionNumber, true
}

func (s *Server) createWebCall(w http.ResponseWriter, r *http.Request) {
	client, sessionNumber, ok := s.resolveCallRequest(w, r, http.StatusNotFound)
	if !ok {
		return
	}

	sess, err := s.store.CreateSession(r.Context(), client.ID, sessionNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	callURL, err := s.calls.WebCallURL(vapi.Metadata{
		ClientID:      client.ID.String(),
		SessionID:     sess.ID.String(),
		SessionNumber: sessionNumber,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("web call prepared", "client_id", client.ID, "session_id", sess.ID, "session_number", sessionNumber)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"session_id":     sess.ID,
		"session_number": sessionNumber,
		"client_name":    client.Name,
		"web_call_url":   callURL,
	})
}

func (s *Server) createPhoneCall(w http.ResponseWriter, r *http.Request) {
	client, sessionNumber, ok := s.resolveCallRequest(w, r, http.StatusBadRequest)
	if !ok {
		return
	}
	// Checked before creating the session so a doomed dial-out leaves no
	// pending row behind.
	if client.Phone == "" {
		respondError(w, http.StatusBadRequest, "client has no phone number")
		return
	}

	sess, err := s.store.CreateSession(r.Context(), client.ID, sessionNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.calls.CreatePhoneCall(r.Context(), client.Phone, vapi.Metadata{
		ClientID:      client.ID.String(),
		SessionID:     sess.ID.String(),
		SessionNumber: sessionNumber,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("phone call started", "client_id", client.ID, "session_id", sess.ID, "call_id", created.ID)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sess.ID,
		"call_id":    created.ID,
		"message":    fmt.Sprintf("Call started to %s", client.Phone),
	})
}
