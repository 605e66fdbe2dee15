package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
)

// TokenSource supplies the bearer token for an outgoing request.
// An empty token with a nil error means "send no Authorization header".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource always returns the same token.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}

// storedCredentials is the on-disk format of the token file.
type storedCredentials struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// FileTokenStore persists a single bearer token in a YAML file.
// Reads happen on every request so a login in another process is picked up.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore creates a store backed by path. The file need not exist.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the backing file path.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Token implements TokenSource. A missing file yields an empty token.
func (s *FileTokenStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if errors.Is(err, apperrors.ErrNoToken) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

// Load returns the stored token or apperrors.ErrNoToken.
func (s *FileTokenStore) Load() (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.read()
	if err != nil {
		return "", time.Time{}, err
	}
	return creds.Token, creds.SavedAt, nil
}

// Save writes token to the store, creating parent directories as needed.
func (s *FileTokenStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(storedCredentials{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Write-then-rename so a concurrent reader never sees a partial file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) read() (*storedCredentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var creds storedCredentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if strings.TrimSpace(creds.Token) == "" {
		return nil, apperrors.ErrNoToken
	}
	return &creds, nil
}

// Ensure both sources implement TokenSource at compile time.
var (
	_ TokenSource = (*FileTokenStore)(nil)
	_ TokenSource = StaticTokenSource("")
)
