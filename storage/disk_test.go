package storage

import (
	"chat-relay/errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStore_Stores_And_Names_By_Extension(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	store, err := NewDiskStore(dir, slog.Default())
	req.NoError(err)

	payload := []byte("attachment bytes")

	// When a named file is stored
	ref, err := store.Store(payload, "holiday.jpeg")
	req.NoError(err)

	// Then the reference keeps the original extension and resolves to the
	// written bytes
	req.True(strings.HasSuffix(ref, ".jpeg"))
	written, err := os.ReadFile(filepath.Join(dir, ref))
	req.NoError(err)
	req.Equal(payload, written)
}

func TestDiskStore_Sniffs_Extension_When_Name_Has_None(t *testing.T) {
	req := require.New(t)
	store, err := NewDiskStore(t.TempDir(), slog.Default())
	req.NoError(err)

	// A PNG magic header with no usable client file name
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	ref, err := store.Store(payload, "pasted-image")
	req.NoError(err)
	req.True(strings.HasSuffix(ref, ".png"))
}

func TestDiskStore_Rejects_Empty_Payload(t *testing.T) {
	req := require.New(t)
	store, err := NewDiskStore(t.TempDir(), slog.Default())
	req.NoError(err)

	_, err = store.Store(nil, "empty.txt")
	req.ErrorIs(err, errors.ErrEmptyAttachment)
}
