// Package domain contains core concepts of the messaging system.
// This file defines the Message exchanged between two identities.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two identities. File holds the
// stored attachment reference, empty when the message carries text only.
// The ID is assigned at persistence time.
type Message struct {
	ID        uuid.UUID
	Sender    string
	Recipient string
	Text      string
	File      string
	CreatedAt time.Time
}
