package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/intake"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/task"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

// ChannelWebhookHandler receives chat-channel callbacks. Inbound
// messages are acknowledged immediately and processed by a background
// task; the gateway redelivers on anything but a fast 200.
type ChannelWebhookHandler struct {
	BaseHandler
	cfg      config.ChannelConfig
	enqueuer task.Enqueuer
	logger   *zap.Logger
}

// NewChannelWebhookHandler creates a new channel webhook handler
func NewChannelWebhookHandler(cfg config.ChannelConfig, enqueuer task.Enqueuer, logger *zap.Logger) *ChannelWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelWebhookHandler{
		cfg:      cfg,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// RegisterRoutes registers channel webhook routes
func (h *ChannelWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	webhooks.GET("/channel", h.Verify)
	webhooks.POST("/channel", h.Receive)
}

// Verify answers the gateway's subscription handshake
func (h *ChannelWebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.cfg.VerifyToken {
		h.logger.Warn("Channel webhook verification rejected",
			zap.String("mode", mode))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// gateway webhook envelope, trimmed to the fields the pipeline reads
type channelEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []gatewayMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type gatewayMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Audio *struct {
		ID string `json:"id"`
	} `json:"audio"`
	Image *struct {
		ID string `json:"id"`
	} `json:"image"`
}

// Receive accepts an inbound message batch and enqueues one
// process_inbound task per message. Unsupported message types are
// acknowledged and dropped.
func (h *ChannelWebhookHandler) Receive(c *gin.Context) {
	var envelope channelEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.BadRequest(c, "Invalid webhook payload")
		return
	}

	ctx := c.Request.Context()
	accepted := 0

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				payload, ok := h.toTaskPayload(msg)
				if !ok {
					h.logger.Debug("Ignoring unsupported channel message",
						zap.String("type", msg.Type))
					continue
				}

				// Tenant resolution happens inside the pipeline; the
				// task is not tenant-scoped yet.
				t := task.New(uuid.Nil, task.KindProcessInbound, task.MustMarshal(payload))
				if err := h.enqueuer.Enqueue(ctx, t); err != nil {
					h.logger.Error("Failed to enqueue inbound message",
						zap.String("sender", payload.SenderIdentity),
						zap.Error(err))
					// Non-200 so the gateway redelivers the batch
					h.InternalError(c, "Failed to accept message")
					return
				}
				accepted++
			}
		}
	}

	h.Success(c, gin.H{"accepted": accepted})
}

// toTaskPayload maps a gateway message onto a process_inbound payload
func (h *ChannelWebhookHandler) toTaskPayload(msg gatewayMessage) (task.ProcessInboundPayload, bool) {
	payload := task.ProcessInboundPayload{
		Channel:        h.cfg.Provider,
		SenderIdentity: msg.From,
		ReceivedAt:     messageTime(msg.Timestamp),
	}

	switch msg.Type {
	case "text":
		if msg.Text == nil || msg.Text.Body == "" {
			return payload, false
		}
		payload.Modality = string(intake.ModalityText)
		payload.Text = msg.Text.Body
	case "audio", "voice":
		if msg.Audio == nil || msg.Audio.ID == "" {
			return payload, false
		}
		payload.Modality = string(intake.ModalityVoice)
		payload.MediaRef = msg.Audio.ID
	case "image":
		if msg.Image == nil || msg.Image.ID == "" {
			return payload, false
		}
		payload.Modality = string(intake.ModalityImage)
		payload.MediaRef = msg.Image.ID
	default:
		return payload, false
	}

	return payload, true
}

// messageTime parses the gateway's unix-seconds timestamp, falling back
// to now for malformed values.
func messageTime(ts string) time.Time {
	if ts == "" {
		return time.Now()
	}
	seconds, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(seconds, 0)
}
