package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eterno-app/eterno/internal/events"
	"github.com/eterno-app/eterno/internal/prompt"
	"github.com/eterno-app/eterno/internal/store"
	"github.com/eterno-app/eterno/internal/vapi"
)

// Per-call platform settings. The timeouts are declared for the platform to
// enforce; this service never tracks call duration itself.
const (
	modelProvider         = "anthropic"
	modelTemperature      = 0.7
	voiceProvider         = "11labs"
	voiceStability        = 0.6
	voiceSimilarityBoost  = 0.8
	silenceTimeoutSeconds = 45
	maxDurationSeconds    = 3900
)

// handleWebhook routes inbound call-platform events. The platform does not
// expect business-logic errors back, so apart from the modeled 400/404 cases
// every branch acknowledges with a 200.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req vapi.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == nil {
		respondError(w, http.StatusBadRequest, "no message")
		return
	}
	msg := req.Message

	s.logger.Info("webhook received", "type", msg.Type)

	switch msg.Type {
	case vapi.EventAssistantRequest:
		s.handleAssistantRequest(w, r, msg)
	case vapi.EventTranscript:
		s.handleTranscript(w, r, msg)
	case vapi.EventEndOfCallReport:
		s.handleEndOfCall(w, r, msg)
	default:
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func (s *Server) handleAssistantRequest(w http.ResponseWriter, r *http.Request, msg *vapi.Message) {
	var meta vapi.Metadata
	if msg.Call != nil {
		meta = msg.Call.Metadata
	}

	// A call without session metadata still gets a working assistant, just one
	// that apologizes and asks the caller to retry.
	if meta.SessionID == "" {
		respondJSON(w, http.StatusOK, vapi.AssistantResponse{
			Assistant: vapi.Assistant{
				Model: vapi.Model{
					Provider:     modelProvider,
					Model:        s.cfg.Model,
					SystemPrompt: prompt.Fallback(),
				},
				Voice: vapi.Voice{
					Provider: voiceProvider,
					VoiceID:  s.cfg.VoiceID,
				},
				FirstMessage: "Hello! It looks like something went wrong with the setup. Could you try again?",
			},
		})
		return
	}

	sessionID, err := uuid.Parse(meta.SessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	sess, err := s.store.GetSessionWithClient(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sc := s.scripts.Lookup(sess.SessionNumber)
	previousContext, err := s.assembler.BuildPreviousContext(r.Context(), sess.ClientID, sess.SessionNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dynamicPrompt := prompt.BuildPrompt(sess.Client.Name, sess.SessionNumber, sc, previousContext)

	if err := s.store.MarkSessionInProgress(r.Context(), sess.ID, time.Now().UTC()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, vapi.AssistantResponse{
		Assistant: vapi.Assistant{
			Model: vapi.Model{
				Provider:     modelProvider,
				Model:        s.cfg.Model,
				Temperature:  modelTemperature,
				SystemPrompt: dynamicPrompt,
			},
			Voice: vapi.Voice{
				Provider:        voiceProvider,
				VoiceID:         s.cfg.VoiceID,
				Stability:       voiceStability,
				SimilarityBoost: voiceSimilarityBoost,
			},
			FirstMessage:          prompt.FirstMessage(sess.Client.Name, sess.SessionNumber),
			SilenceTimeoutSeconds: silenceTimeoutSeconds,
			MaxDurationSeconds:    maxDurationSeconds,
		},
	})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request, msg *vapi.Message) {
	var meta vapi.Metadata
	if msg.Call != nil {
		meta = msg.Call.Metadata
	}
	if meta.SessionID == "" || len(msg.Transcript) == 0 {
		respondJSON(w, http.StatusOK, map[string]bool{"saved": false})
		return
	}
	sessionID, err := uuid.Parse(meta.SessionID)
	if err != nil {
		s.logger.Warn("transcript event with invalid session id", "session_id", meta.SessionID)
		respondJSON(w, http.StatusOK, map[string]bool{"saved": false})
		return
	}

	// Append-only: replays insert duplicate rows, never dedup.
	for _, u := range msg.Transcript {
		speaker := store.SpeakerClient
		if u.Role == "assistant" {
			speaker = store.SpeakerAgent
		}
		ts := u.Timestamp
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		if err := s.store.AppendUtterance(r.Context(), sessionID, speaker, u.Text, ts); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleEndOfCall(w http.ResponseWriter, r *http.Request, msg *vapi.Message) {
	var meta vapi.Metadata
	var call vapi.Call
	if msg.Call != nil {
		call = *msg.Call
		meta = call.Metadata
	}
	sessionID, err := uuid.Parse(meta.SessionID)
	if meta.SessionID == "" || err != nil {
		respondJSON(w, http.StatusOK, map[string]bool{"processed": false})
		return
	}

	durationMinutes := int(math.Round(call.Duration / 60))
	if err := s.store.MarkSessionCompleted(r.Context(), sessionID, time.Now().UTC(), durationMinutes, call.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Extraction runs off-request. A publish failure only loses enrichment;
	// the session is already durably completed.
	if len(msg.Transcript) > 0 {
		evt := events.SessionCompletedEvent{
			SessionID:  sessionID.String(),
			CallID:     call.ID,
			Transcript: msg.Transcript,
		}
		if err := s.publisher.Publish(events.SubjectSessionCompleted, evt); err != nil {
			s.logger.Error("failed to publish session completed", "session_id", sessionID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"processed": true})
}
