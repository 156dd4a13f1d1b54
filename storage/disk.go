//go:generate go run go.uber.org/mock/mockgen -source=disk.go -destination=../mocks/mock_blob_store.go -package=mocks
package storage

import (
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// IBlobStore stores attachment bytes and returns a stable reference under
// which they can be retrieved later.
type IBlobStore interface {
	Store(data []byte, originalName string) (string, error)
}

// DiskStore writes attachments to a flat directory. References are derived
// from the arrival timestamp plus the original file extension; the same
// millisecond with the same extension is an accepted rare collision.
type DiskStore struct {
	dir string
	log *slog.Logger
}

func NewDiskStore(dir string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{dir: dir, log: log}, nil
}

// Store writes the payload and returns the generated file name. The
// extension comes from the client-provided name when present, otherwise
// from content sniffing.
func (s *DiskStore) Store(data []byte, originalName string) (string, error) {
	if len(data) == 0 {
		return "", errors.ErrEmptyAttachment
	}

	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(originalName)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(mimetype.Detect(data).Extension(), ".")
	}
	if ext == "" {
		ext = "bin"
	}

	name := fmt.Sprintf("%d.%s", time.Now().UnixMilli(), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing attachment: %w", err)
	}

	s.log.Debug("Attachment saved", "path", path, "bytes", len(data))
	return name, nil
}

// Dir exposes the storage root, used to serve the files over HTTP.
func (s *DiskStore) Dir() string {
	return s.dir
}
