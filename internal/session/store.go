package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devconnect/devconnect-go/internal/domain"
)

const fileName = "session.json"

// Session is the persisted authenticated identity: who is logged in and the
// bearer token the backend issued.
type Session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Store holds the current session and persists it across runs as a JSON
// file in the data directory. There is no ambient global: construct one,
// call Load, and inject it wherever an identity is needed.
//
// Store implements domain.SessionReader.
type Store struct {
	path string

	mu  sync.Mutex
	cur *Session
}

// NewStore creates a session store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, fileName)}
}

// Load reads the persisted session. A missing file means logged out and is
// not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("unmarshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &sess
	return nil
}

// Set installs and persists a new session, replacing any existing one.
func (s *Store) Set(user domain.User, token string) error {
	sess := Session{User: user, Token: token}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &sess
	return nil
}

// Clear logs out: the persisted file is removed and in-memory state
// dropped. Clearing an already-empty store is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = nil
	return nil
}

// Current returns the logged-in user, or nil when logged out.
func (s *Store) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	user := s.cur.User
	return &user
}

// Token returns the bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}

// Expired reports whether the stored token carries an exp claim in the
// past. The signature is not verified here, the backend owns that; this
// only lets the client prompt for re-login instead of issuing doomed
// requests. Tokens without an exp claim, or that fail to parse as JWTs,
// are treated as unexpired.
func (s *Store) Expired() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
