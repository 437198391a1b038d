package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/gofrs/flock"
)

// FileStore keeps all keys in one JSON object file. Every operation holds an
// exclusive lock on a sibling ".lock" file so separate processes can share it.
type FileStore struct {
	filePath string
	flk      *flock.Flock
}

// NewFileStore prepares a file-backed store, creating the parent directory.
// The data file itself is created on the first Set.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		return nil, errors.New("kv: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		filePath: filePath,
		flk:      flock.New(filePath + ".lock"),
	}, nil
}

// Get retrieves the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) (value string, err error) {
	if err := s.lock(ctx); err != nil {
		return "", err
	}
	defer s.unlock(&err)

	entries, err := s.readEntries()
	if err != nil {
		return "", err
	}
	v, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key, rewriting the file through a temp file and rename.
func (s *FileStore) Set(ctx context.Context, key, value string) (err error) {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock(&err)

	entries, err := s.readEntries()
	if err != nil {
		return err
	}
	entries[key] = value

	data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.filePath, err)
	}

	tempFilePath := s.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.filePath, err)
	}
	return nil
}

// Close releases the lock handle.
func (s *FileStore) Close() error {
	return s.flk.Close()
}

func (s *FileStore) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.filePath, err)
	}
	return nil
}

// unlock releases the file lock, reporting a failure through errp unless an
// earlier error is already set.
func (s *FileStore) unlock(errp *error) {
	if err := s.flk.Unlock(); err != nil && *errp == nil {
		*errp = fmt.Errorf("failed to unlock %s: %w", s.filePath, err)
	}
}

func (s *FileStore) readEntries() (map[string]string, error) {
	entries := make(map[string]string)
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.filePath, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.filePath, err)
	}
	return entries, nil
}
