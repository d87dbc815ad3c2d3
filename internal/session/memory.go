package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It is used when no Redis
// URL is configured.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	sess := newSession()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &memoryEntry{session: *sess, expiresAt: s.now().Add(s.ttl)}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entryLocked(id)
	if err != nil {
		return nil, err
	}
	cp := e.session
	return &cp, nil
}

func (s *MemoryStore) Login(ctx context.Context, id string, identity Identity) error {
	return s.update(id, func(sess *Session) { applyLogin(sess, identity) })
}

func (s *MemoryStore) Logout(ctx context.Context, id string) error {
	return s.update(id, applyLogout)
}

func (s *MemoryStore) Flash(ctx context.Context, id, message string) error {
	return s.update(id, func(sess *Session) { sess.Flash = message })
}

func (s *MemoryStore) TakeFlash(ctx context.Context, id string) (string, error) {
	var msg string
	err := s.update(id, func(sess *Session) {
		msg = sess.Flash
		sess.Flash = ""
	})
	return msg, err
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entryLocked(id)
	if err != nil {
		return err
	}
	fn(&e.session)
	return nil
}

// entryLocked returns a live entry and slides its expiry.
func (s *MemoryStore) entryLocked(id string) (*memoryEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	return e, nil
}
