package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const webCallBase = "https://vapi.ai/call"

type Client struct {
	apiKey        string
	baseURL       string
	assistantID   string
	phoneNumberID string
	client        *http.Client
}

func NewClient(apiKey, baseURL, assistantID, phoneNumberID string) *Client {
	return &Client{
		apiKey:        apiKey,
		baseURL:       baseURL,
		assistantID:   assistantID,
		phoneNumberID: phoneNumberID,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// WebCallURL builds the browser deep link for a web call, with the session
// metadata urlencoded as a query parameter.
func (c *Client) WebCallURL(meta Metadata) (string, error) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	q := url.Values{}
	q.Set("assistantId", c.assistantID)
	q.Set("metadata", string(payload))
	return webCallBase + "?" + q.Encode(), nil
}

type phoneCallRequest struct {
	PhoneNumberID string   `json:"phoneNumberId"`
	Customer      customer `json:"customer"`
	AssistantID   string   `json:"assistantId"`
	Metadata      Metadata `json:"metadata"`
}

type customer struct {
	Number string `json:"number"`
}

// CreatedCall is the platform's reply to a call-creation request.
type CreatedCall struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreatePhoneCall asks the platform to dial the given number with this
// service's assistant, carrying the session metadata.
func (c *Client) CreatePhoneCall(ctx context.Context, phone string, meta Metadata) (CreatedCall, error) {
	body, err := json.Marshal(phoneCallRequest{
		PhoneNumberID: c.phoneNumberID,
		Customer:      customer{Number: phone},
		AssistantID:   c.assistantID,
		Metadata:      meta,
	})
	if err != nil {
		return CreatedCall{}, fmt.Errorf("marshal call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(body))
	if err != nil {
		return CreatedCall{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return CreatedCall{}, fmt.Errorf("call api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CreatedCall{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CreatedCall{}, fmt.Errorf("call api %d: %s", resp.StatusCode, string(respBody))
	}

	var call CreatedCall
	if err := json.Unmarshal(respBody, &call); err != nil {
		return CreatedCall{}, fmt.Errorf("unmarshal call: %w", err)
	}
	return call, nil
}
