package repositories

import (
	"chat-relay/domain"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMessageRepository_Append_And_Between_Ascending(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	alice := uuid.NewString()
	bob := uuid.NewString()
	at := time.Now().UTC()

	// Given a conversation with traffic in both directions
	first, err := repository.Append(domain.Message{
		Sender: alice, Recipient: bob, Text: "hi bob", CreatedAt: at,
	})
	req.NoError(err)
	second, err := repository.Append(domain.Message{
		Sender: bob, Recipient: alice, Text: "hi alice", CreatedAt: at.Add(time.Minute),
	})
	req.NoError(err)
	third, err := repository.Append(domain.Message{
		Sender: alice, Recipient: bob, Text: "how are you", CreatedAt: at.Add(2 * time.Minute),
	})
	req.NoError(err)

	// When the history is fetched from either side
	history, err := repository.Between(alice, bob)
	req.NoError(err)
	reversed, err := repository.Between(bob, alice)
	req.NoError(err)

	// Then both directions share the conversation, ordered by creation
	// time ascending, with the assigned ids intact
	req.Len(history, 3)
	req.Equal(history, reversed)
	req.Equal([]uuid.UUID{first, second, third},
		[]uuid.UUID{history[0].ID, history[1].ID, history[2].ID})
	req.Equal("hi bob", history[0].Text)
	req.True(history[0].CreatedAt.Before(history[2].CreatedAt))
}

func TestMessageRepository_Between_Is_Scoped_To_The_Pair(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	alice := uuid.NewString()
	bob := uuid.NewString()
	clara := uuid.NewString()

	_, err := repository.Append(domain.Message{
		Sender: alice, Recipient: bob, Text: "private", CreatedAt: time.Now().UTC(),
	})
	req.NoError(err)

	// Clara's history with alice stays empty
	history, err := repository.Between(alice, clara)
	req.NoError(err)
	req.Empty(history)
}

func TestMessageRepository_Attachment_Reference_Round_Trip(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	alice := uuid.NewString()
	bob := uuid.NewString()

	id, err := repository.Append(domain.Message{
		Sender: alice, Recipient: bob, File: "1700000000000.png", CreatedAt: time.Now().UTC(),
	})
	req.NoError(err)

	history, err := repository.Between(alice, bob)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(id, history[0].ID)
	req.Equal("1700000000000.png", history[0].File)
	req.Empty(history[0].Text)
}
