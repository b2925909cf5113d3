package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/R3E-Network/courseclient/internal/logging"
)

// FileStore keeps the token in a device-local JSON key-value file. Keys other
// than the token key are preserved across writes.
type FileStore struct {
	mu     sync.Mutex
	path   string
	key    string
	logger *logging.Logger
}

// NewFileStore creates a store backed by the file at path. The file is
// created lazily on the first Set.
func NewFileStore(path, key string, logger *logging.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("tokenstore: file path is required")
	}
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileStore{path: filepath.Clean(path), key: key, logger: logger}, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(ctx context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).Warn("read token store")
		return "", false
	}
	token, ok := values[f.key]
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (f *FileStore) Set(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		// A corrupt file is replaced rather than blocking login.
		f.logger.WithContext(ctx).WithError(err).Warn("discarding unreadable token store")
		values = map[string]string{}
	}
	values[f.key] = token
	return f.writeLocked(values)
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).Warn("discarding unreadable token store")
		values = map[string]string{}
	}
	if _, ok := values[f.key]; !ok && err == nil {
		return nil
	}
	delete(values, f.key)
	return f.writeLocked(values)
}

func (f *FileStore) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) writeLocked(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("tokenstore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: close: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("tokenstore: rename: %w", err)
	}
	return nil
}
