package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/connermo/ai4s/internal/model"
)

var (
	ErrNoSession    = errors.New("session: not logged in")
	ErrExpired      = errors.New("session: token expired")
	ErrInvalidToken = errors.New("session: invalid token")
	ErrNotAdmin     = errors.New("session: admin privileges required")
)

// Claims are the fields the backend signs into its tokens.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Session is the persisted login.
type Session struct {
	Token     string    `yaml:"token"`
	Username  string    `yaml:"username"`
	UserID    int       `yaml:"user_id"`
	APIBase   string    `yaml:"api_base,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
	SavedAt   time.Time `yaml:"saved_at"`
}

// FromLogin builds a session from a login response after checking the
// token carries admin rights.
func FromLogin(resp model.LoginResponse, apiBase string, now time.Time) (Session, error) {
	claims, err := Inspect(resp.Token, now)
	if err != nil {
		return Session{}, err
	}
	if !claims.IsAdmin {
		return Session{}, ErrNotAdmin
	}
	s := Session{
		Token:    resp.Token,
		Username: resp.User.Username,
		UserID:   resp.User.ID,
		APIBase:  apiBase,
		SavedAt:  now,
	}
	if s.Username == "" {
		s.Username = claims.Username
	}
	if s.UserID == 0 {
		s.UserID = claims.UserID
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Validate checks that the stored token is still usable at now.
func (s Session) Validate(now time.Time) error {
	if strings.TrimSpace(s.Token) == "" {
		return ErrNoSession
	}
	claims, err := Inspect(s.Token, now)
	if err != nil {
		return err
	}
	if !claims.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Inspect decodes the token claims without verifying the signature.
func Inspect(token string, now time.Time) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}
	return claims, nil
}

// Store persists a session as YAML.
type Store struct {
	path string
}

// NewStore returns a store at path. An empty path uses DefaultPath.
func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// DefaultPath returns ~/.local/state/ai4s/session.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "ai4s", "session.yml")
	}
	return filepath.Join(home, ".local", "state", "ai4s", "session.yml")
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// Load reads the saved session. A missing file is ErrNoSession.
func (s *Store) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("session: read: %w", err)
	}
	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	if strings.TrimSpace(sess.Token) == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Save writes the session with owner-only permissions.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

// Clear removes the saved session. Clearing a missing session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove: %w", err)
	}
	return nil
}
