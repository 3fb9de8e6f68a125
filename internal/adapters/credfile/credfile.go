package credfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRelPath is the engine's credential file relative to the home directory.
const DefaultRelPath = ".docker/config.json"

// Store implements ports.CredentialStore for a JSON file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Default returns the store at ~/.docker/config.json.
func Default() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}
	return New(filepath.Join(home, DefaultRelPath)), nil
}

func (s *Store) Path() string {
	return s.path
}

// Reset replaces the file with an empty JSON object. The write goes through
// a temporary file and a rename so readers never see a partial file.
func (s *Store) Reset() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString("{}"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to reset credentials: %w", err)
	}
	return nil
}

// Read decodes the file into a generic object.
func (s *Store) Read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	content := map[string]any{}
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return content, nil
}
