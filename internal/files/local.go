package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the blob store message attachments are written to. Keys are flat
// file names; the implementation decides where the bytes live.
type Store interface {
	Write(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
	BasePath() string
}

// Local keeps attachments on the local filesystem under a single directory.
type Local struct {
	basePath string
	baseURL  string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Local{
		basePath: abs,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// fullPath maps a key to a path inside basePath. Rooting the key at "/"
// before cleaning strips any traversal segments.
func (l *Local) fullPath(key string) string {
	clean := filepath.Clean("/" + key)
	return filepath.Join(l.basePath, clean)
}

// Write stores the blob atomically: the bytes land in a temp file that is
// renamed into place, so readers never observe a partial write.
func (l *Local) Write(ctx context.Context, key string, r io.Reader) error {
	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.fullPath(key)); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Delete removes a blob. A missing blob is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.fullPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob: %w", err)
	}
	return true, nil
}

// URL returns the path the blob is served under.
func (l *Local) URL(key string) string {
	return l.baseURL + "/uploads/" + key
}

func (l *Local) BasePath() string {
	return l.basePath
}
