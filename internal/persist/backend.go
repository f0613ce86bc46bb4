package persist

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("persist: key not found")

// Backend is a durable key-value byte store.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*Dir)(nil)
	_ Backend = (*Postgres)(nil)
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateKey rejects keys that are not safe as file names or row ids.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || strings.Contains(key, "..") {
		return errors.Errorf("persist: invalid key %q", key)
	}
	return nil
}

// Memory keeps blobs in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Write(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Dir stores each key as <dir>/<key>.json.
type Dir struct {
	path string
}

// NewDir returns a Dir backend rooted at path, creating it if needed.
func NewDir(path string) (*Dir, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("persist: dir path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	return &Dir{path: path}, nil
}

// Path returns the directory the backend writes into.
func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.path, key+".json")
}

func (d *Dir) Read(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(d.file(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read state")
	}
	return b, nil
}

// Write replaces the blob atomically: data lands in a temp file that is then
// renamed over the old one.
func (d *Dir) Write(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.path, "."+key+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp state")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp state")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp state")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp state")
	}
	if err := os.Rename(tmpName, d.file(key)); err != nil {
		cleanup()
		return errors.Wrap(err, "replace state")
	}
	return nil
}

func (d *Dir) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(d.file(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "delete state")
	}
	return nil
}
