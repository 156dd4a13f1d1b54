package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/storage"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// Router validates an inbound message, persists it, and delivers it to the
// recipient's live connections. Only authenticated sessions ever reach it.
//
// Persistence happens before fan-out: a crash after the append loses only
// the live push (the message stays retrievable through history), while a
// crash before it loses the message entirely, with no fan-out either.
type Router struct {
	registry contract.IRegistry
	messages repositories.IMessageRepository
	blobs    storage.IBlobStore
	filter   *moderation.Filter
	validate *validator.Validate
	metrics  *observability.Metrics
	log      *slog.Logger
}

func NewRouter(
	registry contract.IRegistry,
	messages repositories.IMessageRepository,
	blobs storage.IBlobStore,
	filter *moderation.Filter,
	metrics *observability.Metrics,
	log *slog.Logger,
) *Router {
	return &Router{
		registry: registry,
		messages: messages,
		blobs:    blobs,
		filter:   filter,
		validate: validator.New(),
		metrics:  metrics,
		log:      log,
	}
}

// Route processes one inbound frame from sender. Invalid frames are dropped
// silently, mirroring permissive client input without corrupting state.
func (r *Router) Route(sender domain.Identity, frame InboundFrame) {
	if err := r.validate.Struct(frame); err != nil {
		r.drop("missing recipient", sender)
		return
	}
	if frame.Text == "" && frame.File == nil {
		r.drop("no text and no file", sender)
		return
	}

	var storedFile string
	if frame.File != nil {
		data, err := frame.File.Decode()
		if err != nil {
			r.drop("undecodable attachment", sender)
			return
		}
		storedFile, err = r.blobs.Store(data, frame.File.Name)
		if err != nil {
			r.log.Error("Attachment store failed", "sender", sender.ID, "error", err)
			r.metrics.IncrMessagesDropped()
			return
		}
	}

	text := frame.Text
	if r.filter != nil {
		text = r.filter.Redact(text)
	}

	message := domain.Message{
		Sender:    sender.ID,
		Recipient: frame.Recipient,
		Text:      text,
		File:      storedFile,
		CreatedAt: time.Now().UTC(),
	}

	id, err := r.messages.Append(message)
	if err != nil {
		// Not persisted means not sent: no fan-out at all.
		r.log.Error("Message persistence failed", "sender", sender.ID, "error", err)
		r.metrics.IncrMessagesDropped()
		return
	}
	message.ID = id

	r.deliver(message)
	r.metrics.IncrMessagesRouted()
}

// deliver fans the persisted message out to every live connection of the
// recipient. Zero live connections is not an error; the message remains
// retrievable through history. A failed push to one connection does not
// stop delivery to the others and never rolls back persistence.
func (r *Router) deliver(message domain.Message) {
	var fileRef *string
	if message.File != "" {
		fileRef = &message.File
	}
	frame, err := json.Marshal(DeliveryFrame{
		ID:        message.ID.String(),
		Sender:    message.Sender,
		Recipient: message.Recipient,
		Text:      message.Text,
		File:      fileRef,
	})
	if err != nil {
		r.log.Error("Delivery frame marshal failed", "message_id", message.ID, "error", err)
		return
	}

	for _, peer := range r.registry.Find(message.Recipient) {
		if err := peer.Push(frame); err != nil {
			r.metrics.IncrDeliveryFailures()
			r.log.Warn("Message push failed",
				"message_id", message.ID,
				"conn_id", peer.ID(),
				"error", err)
		}
	}
}

func (r *Router) drop(reason string, sender domain.Identity) {
	r.metrics.IncrMessagesDropped()
	r.log.Debug("Inbound frame dropped", "reason", reason, "sender", sender.ID)
}
