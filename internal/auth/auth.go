// Package auth gates the management API behind a single operator
// credential. Sessions are opaque bearer tokens held in memory; losing
// them on restart just means the operator logs in again.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type session struct {
	expiresAt time.Time
}

type Manager struct {
	username     string
	passwordHash []byte
	ttl          time.Duration

	mu       sync.Mutex
	sessions map[string]session

	now func() time.Time
}

// NewManager builds a Manager for one operator account. passwordHash is a
// bcrypt hash of the operator password.
func NewManager(username string, passwordHash []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		username:     strings.TrimSpace(strings.ToLower(username)),
		passwordHash: passwordHash,
		ttl:          ttl,
		sessions:     make(map[string]session),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// HashPassword is a convenience for wiring a plain dev password through
// config without storing it in clear.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Login verifies the credential pair and issues a bearer token.
func (m *Manager) Login(username, password string) (string, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username != m.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	m.sessions[token] = session{expiresAt: m.now().Add(m.ttl)}
	return token, nil
}

// Check reports whether token belongs to a live session.
func (m *Manager) Check(token string) bool {
	if token == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return false
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, token)
		return false
	}
	return true
}

// Logout drops the session if it exists.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// pruneLocked drops expired sessions. Must be called with the mutex held.
func (m *Manager) pruneLocked() {
	now := m.now()
	for t, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, t)
		}
	}
}
