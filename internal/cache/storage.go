package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when no entry is stored for a key.
var ErrNotFound = errors.New("cache entry not found")

// Storage defines the interface for playlist body caching.
type Storage interface {
	Get(key string) (*Entry, error)
	Set(key string, content []byte) error
}

// Entry represents a cached playlist body with its metadata
type Entry struct {
	Key       string    `json:"key"`
	Content   []byte    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// Expired reports whether the entry is older than ttl.
// A non-positive ttl never expires.
func (e *Entry) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return e.Age(now) > ttl
}

// FileStorage implements Storage with one JSON file per key.
type FileStorage struct {
	baseDir string
	now     func() time.Time
}

// NewFileStorage creates a file-based cache rooted at baseDir,
// creating the directory if needed.
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStorage{
		baseDir: baseDir,
		now:     time.Now,
	}, nil
}

// Get retrieves a cached entry by key. It returns ErrNotFound on a miss.
func (fs *FileStorage) Get(key string) (*Entry, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return &entry, nil
}

// Set stores content under key with the current time.
// The file is written to a temporary name first and renamed into place.
func (fs *FileStorage) Set(key string, content []byte) error {
	data, err := json.Marshal(Entry{
		Key:       key,
		Content:   content,
		Timestamp: fs.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(fs.baseDir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fs.path(key)); err != nil {
		return fmt.Errorf("failed to store cache file: %w", err)
	}

	return nil
}

// path hashes the key into a safe file name.
func (fs *FileStorage) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(fs.baseDir, hex.EncodeToString(hash[:])+".json")
}
