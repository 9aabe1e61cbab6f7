package task

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RenderPayload drives render_invoice and render_receipt tasks
type RenderPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NotificationPayload drives send_notification tasks
type NotificationPayload struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// SendDocumentPayload drives send_document tasks
type SendDocumentPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Recipient string    `json:"recipient"`
}

// ProcessInboundPayload drives process_inbound tasks. It carries the
// raw channel message so webhook handlers can acknowledge immediately.
type ProcessInboundPayload struct {
	Channel        string    `json:"channel"`
	SenderIdentity string    `json:"sender_identity"`
	Modality       string    `json:"modality"`
	Text           string    `json:"text,omitempty"`
	MediaRef       string    `json:"media_ref,omitempty"`
	ReceivedAt     time.Time `json:"received_at"`
}

// MustMarshal serializes a payload, panicking on programmer error.
// Payload types above contain nothing that can fail to marshal.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
