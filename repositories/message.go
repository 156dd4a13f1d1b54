//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Append(message domain.Message) (uuid.UUID, error)
	Between(userA, userB string) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored representation of a domain.Message.
type diskMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text,omitempty"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// conversationKey identifies the pair of participants independently of who
// sent what: the two ids are ordered so A->B and B->A share one prefix.
func conversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// Append persists a message in BadgerDB and returns its assigned id.
// The key is formatted as "msg:{convKey}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (m MessageRepository) Append(message domain.Message) (uuid.UUID, error) {
	id := uuid.New()
	key := fmt.Sprintf("msg:%s:%019d:%s",
		conversationKey(message.Sender, message.Recipient),
		message.CreatedAt.UnixNano(),
		id,
	)

	record := diskMessage{
		ID:        id.String(),
		Sender:    message.Sender,
		Recipient: message.Recipient,
		Text:      message.Text,
		File:      message.File,
		CreatedAt: message.CreatedAt.UTC(),
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return uuid.Nil, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Between retrieves every message exchanged between two identities, ordered
// by creation time ascending. Thanks to the padded timestamp in the key a
// forward prefix scan is already chronological.
func (m MessageRepository) Between(userA, userB string) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", conversationKey(userA, userB)))

	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record diskMessage
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				message, err := toDomainMessage(record)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("Message history scanned",
		"prefix", strings.TrimSuffix(string(prefix), ":"), "count", len(messages))
	return messages, nil
}

func toDomainMessage(record diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Sender:    record.Sender,
		Recipient: record.Recipient,
		Text:      record.Text,
		File:      record.File,
		CreatedAt: record.CreatedAt.UTC(),
	}, nil
}
