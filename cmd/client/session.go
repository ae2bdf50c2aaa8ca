package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// session persists the bearer token between invocations.
type session struct {
	path string
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".roulette-session"
	}
	return filepath.Join(dir, "roulette", "session")
}

func (s *session) load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *session) save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}
