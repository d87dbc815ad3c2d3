// Package session keeps the per-browser state of the web client: who is
// logged in, the upstream access token, and a one-shot notice for the next
// page. Sessions are only changed through Store actions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Session is a snapshot of one browser session.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"` // decimal user id
	Nickname      string    `json:"nickname,omitempty"`
	Token         string    `json:"token,omitempty"`
	Flash         string    `json:"flash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity is what a successful login stores in the session.
type Identity struct {
	Username string
	Nickname string
	Token    string
}

// Store holds sessions. Implementations must be safe for concurrent use.
type Store interface {
	// Create starts an anonymous session with a fresh id.
	Create(ctx context.Context) (*Session, error)

	// Get returns the session or ErrNotFound when it is unknown or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Login marks the session authenticated as identity.
	Login(ctx context.Context, id string, identity Identity) error

	// Logout clears the identity and token. The session itself survives.
	Logout(ctx context.Context, id string) error

	// Flash stores a notice to show on the next rendered page.
	Flash(ctx context.Context, id, message string) error

	// TakeFlash returns and clears the pending notice.
	TakeFlash(ctx context.Context, id string) (string, error)
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: time.Now()}
}

func applyLogin(s *Session, identity Identity) {
	s.Authenticated = true
	s.Username = identity.Username
	s.Nickname = identity.Nickname
	s.Token = identity.Token
}

func applyLogout(s *Session) {
	s.Authenticated = false
	s.Username = ""
	s.Nickname = ""
	s.Token = ""
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session placed by the web middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
