// Package notify sends outbound messages to customers over the chat
// channel gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/dispatch"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

const defaultTimeout = 15 * time.Second

// Ensure Client satisfies the task executors' notifier and the intake
// pipeline's media fetcher
var _ dispatch.ChannelNotifier = (*Client)(nil)
var _ intake.MediaFetcher = (*Client)(nil)

// Client delivers text messages and document links through a
// WhatsApp-style messaging gateway. Delivery failures surface as errors
// so the task dispatcher can retry them.
type Client struct {
	provider    string
	apiEndpoint string
	accessToken string
	senderID    string
	client      *http.Client
	logger      *zap.Logger
}

type textBody struct {
	Body string `json:"body"`
}

type documentBody struct {
	Link     string `json:"link"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type sendRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Document         *documentBody `json:"document,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gatewayError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewClient creates a channel gateway client from configuration
func NewClient(cfg config.ChannelConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		provider:    cfg.Provider,
		apiEndpoint: strings.TrimSuffix(cfg.APIEndpoint, "/"),
		accessToken: cfg.AccessToken,
		senderID:    cfg.SenderID,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// SendText delivers a plain text message to a channel recipient
func (c *Client) SendText(ctx context.Context, recipient, text string) error {
	if text == "" {
		return fmt.Errorf("empty message text")
	}
	return c.send(ctx, sendRequest{
		MessagingProduct: c.provider,
		To:               recipient,
		Type:             "text",
		Text:             &textBody{Body: text},
	})
}

// SendDocument delivers a document link to a channel recipient. The
// gateway fetches the document from the URL, so the link must be
// reachable for the presign window.
func (c *Client) SendDocument(ctx context.Context, recipient, documentURL, caption, filename string) error {
	if documentURL == "" {
		return fmt.Errorf("empty document URL")
	}
	return c.send(ctx, sendRequest{
		MessagingProduct: c.provider,
		To:               recipient,
		Type:             "document",
		Document: &documentBody{
			Link:     documentURL,
			Caption:  caption,
			Filename: filename,
		},
	})
}

func (c *Client) send(ctx context.Context, req sendRequest) error {
	if c.apiEndpoint == "" {
		return fmt.Errorf("channel gateway not configured")
	}
	if req.To == "" {
		return fmt.Errorf("empty recipient")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiEndpoint, c.senderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("channel gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr gatewayError
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Message != "" {
			return fmt.Errorf("channel gateway error (%d): %s", resp.StatusCode, gwErr.Error.Message)
		}
		return fmt.Errorf("channel gateway error (%d)", resp.StatusCode)
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && len(parsed.Messages) > 0 {
		c.logger.Debug("Channel message accepted",
			zap.String("recipient", req.To),
			zap.String("type", req.Type),
			zap.String("message_id", parsed.Messages[0].ID))
	}

	return nil
}

type mediaMeta struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// FetchMedia downloads the bytes behind a channel media reference. The
// gateway resolves a media ID to a short-lived download URL first, then
// the URL is fetched with the same access token.
func (c *Client) FetchMedia(ctx context.Context, mediaRef string) ([]byte, error) {
	if c.apiEndpoint == "" {
		return nil, fmt.Errorf("channel gateway not configured")
	}
	if mediaRef == "" {
		return nil, fmt.Errorf("empty media reference")
	}

	meta, err := c.mediaURL(ctx, mediaRef)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download error (%d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	return data, nil
}

func (c *Client) mediaURL(ctx context.Context, mediaRef string) (*mediaMeta, error) {
	url := fmt.Sprintf("%s/%s", c.apiEndpoint, mediaRef)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media lookup failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayError
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Message != "" {
			return nil, fmt.Errorf("media lookup error (%d): %s", resp.StatusCode, gwErr.Error.Message)
		}
		return nil, fmt.Errorf("media lookup error (%d)", resp.StatusCode)
	}

	var meta mediaMeta
	if err := json.Unmarshal(respBody, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode media metadata: %w", err)
	}
	if meta.URL == "" {
		return nil, fmt.Errorf("media metadata missing download url")
	}
	return &meta, nil
}
