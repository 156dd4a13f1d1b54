package runtime

import (
	"chat-relay/errors"
	"encoding/base64"
	"strings"
)

// InboundFrame is one application message from a client. At least one of
// Text/File is required; a frame with neither, or without a recipient, is
// discarded.
type InboundFrame struct {
	Recipient string      `json:"recipient" validate:"required"`
	Text      string      `json:"text"`
	File      *FileUpload `json:"file"`
}

// FileUpload carries an attachment as sent by the client: the original file
// name and a base64 payload with a data-URL-style prefix.
type FileUpload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Decode strips the data-URL prefix ("data:...;base64,") when present and
// decodes the payload.
func (f FileUpload) Decode() ([]byte, error) {
	payload := f.Data
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, errors.ErrEmptyAttachment
	}
	return base64.StdEncoding.DecodeString(payload)
}

// DeliveryFrame is the outbound form of a persisted message, pushed to each
// live connection of the recipient. File is null when no attachment exists.
type DeliveryFrame struct {
	ID        string  `json:"id"`
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Text      string  `json:"text"`
	File      *string `json:"file"`
}
