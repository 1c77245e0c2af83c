package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fileTokenStore keeps the token as the only entry of a JSON object on disk,
// shared by every client process of the same user. Writes go through a
// temporary file and a rename so a reader never sees a partial document.
type fileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store backed by the file at path.
func NewFileTokenStore(path string) TokenStore {
	return &fileTokenStore{path: path}
}

func (s *fileTokenStore) Get(_ context.Context) (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read token file: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", false, fmt.Errorf("parse token file: %w", err)
	}
	token, ok := entries[TokenKey]
	return token, ok, nil
}

func (s *fileTokenStore) Set(_ context.Context, token string) error {
	data, err := json.Marshal(map[string]string{TokenKey: token})
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	return s.write(data)
}

func (s *fileTokenStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *fileTokenStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp token file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}
