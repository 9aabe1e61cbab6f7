package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

const defaultTimeout = 30 * time.Second

// Client transcribes voice notes through a speech-to-text backend. A
// transcription failure is an error here; the intake pipeline downgrades
// it to a no-intent reply rather than failing the message.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type transcribeRequest struct {
	MediaRef string `json:"media_ref"`
	Language string `json:"language,omitempty"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

type backendError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a speech client from configuration
func NewClient(cfg config.SpeechConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Transcribe sends a channel media reference to the backend and returns
// the recognized text
func (c *Client) Transcribe(ctx context.Context, mediaRef string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("speech backend not configured")
	}
	if mediaRef == "" {
		return "", fmt.Errorf("empty media reference")
	}

	body, err := json.Marshal(transcribeRequest{MediaRef: mediaRef})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var backendErr backendError
		if json.Unmarshal(respBody, &backendErr) == nil && backendErr.Error.Message != "" {
			return "", fmt.Errorf("speech backend error (%d): %s", resp.StatusCode, backendErr.Error.Message)
		}
		return "", fmt.Errorf("speech backend error (%d)", resp.StatusCode)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Transcript == "" {
		return "", fmt.Errorf("backend returned empty transcript")
	}

	return parsed.Transcript, nil
}
