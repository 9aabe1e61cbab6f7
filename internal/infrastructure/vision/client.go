package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

const defaultTimeout = 30 * time.Second

// Client reads invoice fields out of receipt or handwritten-note images
// through a vision backend. Backend values arrive as raw strings; the
// receipt extractor owns coercion and confidence capping.
type Client struct {
	endpoint string
	apiKey   string
	maxBytes int64
	client   *http.Client
}

type readRequest struct {
	Image        string `json:"image"`
	CurrencyHint string `json:"currency_hint,omitempty"`
}

type backendError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewClient creates a vision client from configuration
func NewClient(cfg config.VisionConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		maxBytes: cfg.MaxImageBytes,
		client:   &http.Client{Timeout: timeout},
	}
}

// ReadReceipt sends a normalized document image to the backend and
// returns the recognized invoice fields
func (c *Client) ReadReceipt(ctx context.Context, image []byte, hint intake.ReceiptHint) (*intake.VisionReceipt, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("vision backend not configured")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if c.maxBytes > 0 && int64(len(image)) > c.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", c.maxBytes)
	}

	body, err := json.Marshal(readRequest{
		Image:        base64.StdEncoding.EncodeToString(image),
		CurrencyHint: string(hint.Currency),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var backendErr backendError
		if json.Unmarshal(respBody, &backendErr) == nil && backendErr.Error.Message != "" {
			return nil, fmt.Errorf("vision backend error (%d): %s", resp.StatusCode, backendErr.Error.Message)
		}
		return nil, fmt.Errorf("vision backend error (%d)", resp.StatusCode)
	}

	var receipt intake.VisionReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &receipt, nil
}
