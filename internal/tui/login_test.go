package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/session"
)

type fakeAuth struct {
	calls int
	admin bool
	err   error
	t     *testing.T
}

func (a *fakeAuth) Login(_ context.Context, username, _ string) (model.LoginResponse, error) {
	a.calls++
	if a.err != nil {
		return model.LoginResponse{}, a.err
	}
	claims := session.Claims{
		UserID:   1,
		Username: username,
		IsAdmin:  a.admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testNow.Add(24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		a.t.Fatalf("sign: %v", err)
	}
	return model.LoginResponse{Token: token, User: model.User{ID: 1, Username: username, IsAdmin: a.admin}}, nil
}

func newTestLogin(t *testing.T, auth *fakeAuth) (*LoginModel, *fakeStore, *fakeTokens) {
	t.Helper()
	auth.t = t
	store, tokens := &fakeStore{}, &fakeTokens{}
	l := NewLoginModel(LoginDeps{
		Auth:    auth,
		Store:   store,
		Tokens:  tokens,
		APIBase: "http://api.local:8080/api",
		Now:     func() time.Time { return testNow },
	})
	return l, store, tokens
}

func fillLogin(l *LoginModel, user, pass string) {
	l.username.SetValue(user)
	l.password.SetValue(pass)
	l.setFocus(1)
}

func TestLoginRequiresFields(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{admin: true}
	l, _, _ := newTestLogin(t, auth)

	fillLogin(l, "", "")
	l.Update(keyPress("enter"))
	if l.err != "Username is required" {
		t.Fatalf("err = %q", l.err)
	}
	if l.focus != 0 {
		t.Fatalf("focus = %d, want username", l.focus)
	}

	fillLogin(l, "admin", "")
	l.Update(keyPress("enter"))
	if l.err != "Password is required" {
		t.Fatalf("err = %q", l.err)
	}
	if auth.calls != 0 {
		t.Fatalf("login calls = %d, want 0", auth.calls)
	}
}

func TestLoginSuccessNavigatesToAdmin(t *testing.T) {
	t.Parallel()
	auth := &fakeAuth{admin: true}
	l, store, tokens := newTestLogin(t, auth)

	fillLogin(l, "admin", "secret")
	cmd, _ := l.Update(keyPress("enter"))
	if !l.submitting {
		t.Fatal("login not submitting")
	}
	_, nav := l.Update(run(t, cmd))

	if nav == nil || nav.PageID != pageAdmin {
		t.Fatalf("nav = %+v, want admin", nav)
	}
	sess, ok := nav.Params.(session.Session)
	if !ok || sess.Username != "admin" {
		t.Fatalf("params = %#v, want admin session", nav.Params)
	}
	if len(store.saved) != 1 {
		t.Fatalf("sessions saved = %d, want 1", len(store.saved))
	}
	if tokens.token == "" || tokens.token != sess.Token {
		t.Fatal("client token not set from session")
	}
	if l.password.Value() != "" {
		t.Fatal("password kept after login")
	}
}

func TestLoginErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		auth *fakeAuth
		want string
	}{
		{"bad credentials", &fakeAuth{err: &apiclient.HTTPStatusError{StatusCode: 401, Message: "invalid credentials"}}, "Invalid username or password"},
		{"not admin", &fakeAuth{admin: false}, "not an administrator"},
		{"unreachable", &fakeAuth{err: &apiclient.NetworkError{Op: "login", Err: context.DeadlineExceeded}}, "Cannot reach"},
		{"server message", &fakeAuth{err: &apiclient.HTTPStatusError{StatusCode: 500, Message: "database locked"}}, "database locked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store, _ := newTestLogin(t, tt.auth)
			fillLogin(l, "bob", "secret")
			cmd, _ := l.Update(keyPress("enter"))
			_, nav := l.Update(run(t, cmd))

			if nav != nil {
				t.Fatalf("nav = %+v, want none", nav)
			}
			if !strings.Contains(l.err, tt.want) {
				t.Fatalf("err = %q, want %q", l.err, tt.want)
			}
			if len(store.saved) != 0 {
				t.Fatalf("sessions saved = %d, want 0", len(store.saved))
			}
			if l.submitting {
				t.Fatal("still submitting")
			}
		})
	}
}

func TestLoginShowsReturnReason(t *testing.T) {
	t.Parallel()
	l, _, _ := newTestLogin(t, &fakeAuth{})

	l.Enter("Session expired, please log in again")

	if view := l.View(100, 30); !strings.Contains(view, "Session expired") {
		t.Fatalf("reason missing:\n%s", view)
	}
}
