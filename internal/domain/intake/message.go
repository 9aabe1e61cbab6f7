package intake

import (
	"time"
)

// Modality is the form of an inbound payload. It is resolved once at
// pipeline entry and matched exhaustively; nothing downstream inspects
// a raw "type" field.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityVoice Modality = "voice"
	ModalityImage Modality = "image"
)

// IsValid checks if the modality is one of the supported forms
func (m Modality) IsValid() bool {
	switch m {
	case ModalityText, ModalityVoice, ModalityImage:
		return true
	}
	return false
}

// String returns the string representation of the modality
func (m Modality) String() string {
	return string(m)
}

// InboundMessage is one inbound chat event. It is ephemeral: it exists
// only for the duration of a pipeline run and is never persisted.
type InboundMessage struct {
	Channel        string    `json:"channel"`
	SenderIdentity string    `json:"sender_identity"`
	Modality       Modality  `json:"modality"`
	// Text carries the payload for the text modality.
	Text string `json:"text,omitempty"`
	// MediaRef references an audio or image blob for voice/image modalities.
	MediaRef   string    `json:"media_ref,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Validate checks the message shape against its modality
func (m InboundMessage) Validate() error {
	if m.SenderIdentity == "" {
		return errMissingSender
	}
	if !m.Modality.IsValid() {
		return errUnknownModality
	}
	switch m.Modality {
	case ModalityText:
		if m.Text == "" {
			return errEmptyPayload
		}
	case ModalityVoice, ModalityImage:
		if m.MediaRef == "" {
			return errEmptyPayload
		}
	}
	return nil
}
