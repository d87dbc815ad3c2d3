package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix is the key prefix for web sessions
const SessionKeyPrefix = "bbs:session:"

// RedisStore keeps sessions as JSON strings with a sliding TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Store backed by Redis.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return SessionKeyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context) (*Session, error) {
	sess := newSession()
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		log.Printf("[SessionStore] Create FAILED: err=%v", err)
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get loads the session and refreshes its TTL.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.GetEx(ctx, sessionKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Login(ctx context.Context, id string, identity Identity) error {
	err := s.update(ctx, id, func(sess *Session) { applyLogin(sess, identity) })
	if err == nil {
		log.Printf("[SessionStore] Login OK: session=%s user=%s", id, identity.Username)
	}
	return err
}

func (s *RedisStore) Logout(ctx context.Context, id string) error {
	return s.update(ctx, id, applyLogout)
}

func (s *RedisStore) Flash(ctx context.Context, id, message string) error {
	return s.update(ctx, id, func(sess *Session) { sess.Flash = message })
}

func (s *RedisStore) TakeFlash(ctx context.Context, id string) (string, error) {
	var msg string
	err := s.update(ctx, id, func(sess *Session) {
		msg = sess.Flash
		sess.Flash = ""
	})
	return msg, err
}

// update applies fn inside a WATCH transaction so concurrent requests of the
// same browser do not lose each other's writes.
func (s *RedisStore) update(ctx context.Context, id string, fn func(*Session)) error {
	key := sessionKey(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		fn(&sess)
		out, err := json.Marshal(&sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			log.Printf("[SessionStore] Update FAILED: session=%s err=%v", id, err)
		}
		return err
	}
	return fmt.Errorf("update session %s: %w", id, redis.TxFailedErr)
}
