// Package vapi holds the wire types and outbound client for the Vapi voice
// platform: the inbound webhook contract, the assistant configuration returned
// on assistant-request, and the call-creation endpoint.
package vapi

// Webhook event types dispatched by the platform.
const (
	EventAssistantRequest = "assistant-request"
	EventTranscript       = "transcript"
	EventEndOfCallReport  = "end-of-call-report"
)

// WebhookRequest is the body of every inbound webhook POST.
type WebhookRequest struct {
	Message *Message `json:"message"`
}

// Message is one platform event. Call and Transcript are present depending on
// the event type.
type Message struct {
	Type       string      `json:"type"`
	Call       *Call       `json:"call,omitempty"`
	Transcript []Utterance `json:"transcript,omitempty"`
}

// Call identifies the platform-side call. Metadata echoes back whatever was
// attached at call creation; it is the only correlation to a session.
type Call struct {
	ID       string   `json:"id"`
	Metadata Metadata `json:"metadata"`
	Duration float64  `json:"duration,omitempty"` // seconds
}

// Metadata is the opaque payload attached to outbound calls and echoed on
// every webhook event for that call.
type Metadata struct {
	ClientID      string `json:"client_id,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	SessionNumber int    `json:"session_number,omitempty"`
}

// Utterance is one turn of speech in a transcript event. Timestamp is in
// milliseconds and may be absent.
type Utterance struct {
	Role      string `json:"role"` // "assistant" or "user"
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Assistant is the per-call configuration returned on assistant-request.
// Silence and max-duration timeouts are declared here but enforced by the
// platform, not by this service.
type Assistant struct {
	Model                 Model  `json:"model"`
	Voice                 Voice  `json:"voice"`
	FirstMessage          string `json:"firstMessage"`
	SilenceTimeoutSeconds int    `json:"silenceTimeoutSeconds,omitempty"`
	MaxDurationSeconds    int    `json:"maxDurationSeconds,omitempty"`
}

type Model struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature,omitempty"`
	SystemPrompt string  `json:"systemPrompt"`
}

type Voice struct {
	Provider        string  `json:"provider"`
	VoiceID         string  `json:"voiceId"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarityBoost,omitempty"`
}

// AssistantResponse wraps an Assistant for the webhook reply body.
type AssistantResponse struct {
	Assistant Assistant `json:"assistant"`
}
