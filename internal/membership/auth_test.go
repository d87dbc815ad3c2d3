package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"bulletinboard/internal/gateway"
	"bulletinboard/internal/model"
	"bulletinboard/internal/session"
)

type mockAuth struct {
	loginFn     func(ctx context.Context, email, password string) (*model.LoginResponse, error)
	meFn        func(ctx context.Context) (*model.MeResponse, error)
	logoutErr   error
	logoutCalls int
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuth) Logout(ctx context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockAuth) Me(ctx context.Context) (*model.MeResponse, error) {
	return m.meFn(ctx)
}

func TestLogin(t *testing.T) {
	a := &mockAuth{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			if password != "abc123!@" {
				return nil, gateway.ErrUnauthorized
			}
			return &model.LoginResponse{Success: true, Username: "7", Nickname: "alice", AccessToken: "jwt"}, nil
		},
	}

	id, err := Login(context.Background(), a, "a@b.com", "abc123!@")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if id.Username != "7" || id.Token != "jwt" {
		t.Errorf("identity = %+v", id)
	}

	if _, err := Login(context.Background(), a, "a@b.com", "wrong"); !errors.Is(err, ErrLoginFailed) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := Login(context.Background(), a, "", ""); !errors.Is(err, ErrLoginFailed) {
		t.Errorf("empty credentials error = %v", err)
	}
}

func loggedInSession(t *testing.T, store session.Store) *session.Session {
	t.Helper()
	ctx := context.Background()
	sess, _ := store.Create(ctx)
	if err := store.Login(ctx, sess.ID, session.Identity{Username: "7", Nickname: "alice", Token: "jwt"}); err != nil {
		t.Fatal(err)
	}
	sess, _ = store.Get(ctx, sess.ID)
	return sess
}

func TestLogout_BestEffort(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	sess := loggedInSession(t, store)
	a := &mockAuth{logoutErr: gateway.ErrNetwork}

	if err := Logout(context.Background(), a, store, sess.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	got, _ := store.Get(context.Background(), sess.ID)
	if got.Authenticated || a.logoutCalls != 1 {
		t.Errorf("session = %+v, logoutCalls = %d", got, a.logoutCalls)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		me       *model.MeResponse
		err      error
		wantAuth bool
		wantNick string
	}{
		{"still valid", &model.MeResponse{Authenticated: true, Username: "7", Nickname: "alice"}, nil, true, "alice"},
		{"nickname changed", &model.MeResponse{Authenticated: true, Username: "7", Nickname: "alicia"}, nil, true, "alicia"},
		{"expired", &model.MeResponse{Authenticated: false}, nil, false, ""},
		{"rejected", nil, gateway.ErrUnauthorized, false, ""},
		{"api down", nil, gateway.ErrNetwork, true, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore(time.Hour)
			sess := loggedInSession(t, store)
			a := &mockAuth{
				meFn: func(ctx context.Context) (*model.MeResponse, error) { return tt.me, tt.err },
			}

			got, err := Verify(context.Background(), a, store, sess)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got.Authenticated != tt.wantAuth || got.Nickname != tt.wantNick {
				t.Errorf("session = %+v", got)
			}
		})
	}
}

func TestVerify_AnonymousSkipsCall(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	sess, _ := store.Create(context.Background())
	a := &mockAuth{
		meFn: func(ctx context.Context) (*model.MeResponse, error) {
			t.Error("Me called for anonymous session")
			return nil, nil
		},
	}
	if _, err := Verify(context.Background(), a, store, sess); err != nil {
		t.Fatal(err)
	}
}
