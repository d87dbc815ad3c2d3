package membership

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bulletinboard/internal/gateway"
	"bulletinboard/internal/model"
	"bulletinboard/internal/session"
)

var ErrLoginFailed = errors.New("login failed")

// Login notices
const (
	NoticeLoginFailed = "Incorrect email or password."
	NoticeLoggedIn    = "Logged in."
	NoticeLoggedOut   = "Logged out."
)

// Authenticator is the part of the forum API the login flows need.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.MeResponse, error)
}

// Login exchanges credentials for an identity. Every failure is reported as
// ErrLoginFailed so the page shows a single message.
func Login(ctx context.Context, a Authenticator, email, password string) (session.Identity, error) {
	if email == "" || password == "" {
		return session.Identity{}, ErrLoginFailed
	}
	resp, err := a.Login(ctx, email, password)
	if err != nil {
		if !errors.Is(err, gateway.ErrUnauthorized) {
			log.Printf("[Membership] Login call failed: error=%v", err)
		}
		return session.Identity{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if !resp.Success || resp.AccessToken == "" {
		return session.Identity{}, ErrLoginFailed
	}
	return session.Identity{
		Username: resp.Username,
		Nickname: resp.Nickname,
		Token:    resp.AccessToken,
	}, nil
}

// Logout tells the API best effort, then clears the session.
func Logout(ctx context.Context, a Authenticator, store session.Store, sessionID string) error {
	if err := a.Logout(ctx); err != nil {
		log.Printf("[Membership] Logout call failed: session=%s, error=%v", sessionID, err)
	}
	return store.Logout(ctx, sessionID)
}

// Verify confirms that an authenticated session's token is still accepted
// and clears the session when it is not. Transport failures leave the
// session alone.
func Verify(ctx context.Context, a Authenticator, store session.Store, sess *session.Session) (*session.Session, error) {
	if sess.Token == "" {
		return sess, nil
	}
	me, err := a.Me(ctx)
	switch {
	case err == nil && me.Authenticated:
		if sess.Authenticated && sess.Username == me.Username && sess.Nickname == me.Nickname {
			return sess, nil
		}
		identity := session.Identity{Username: me.Username, Nickname: me.Nickname, Token: sess.Token}
		if err := store.Login(ctx, sess.ID, identity); err != nil {
			return sess, err
		}
	case err == nil, gateway.IsAuthError(err):
		if err := store.Logout(ctx, sess.ID); err != nil {
			return sess, err
		}
	default:
		log.Printf("[Membership] Auth check failed: session=%s, error=%v", sess.ID, err)
		return sess, nil
	}
	return store.Get(ctx, sess.ID)
}
