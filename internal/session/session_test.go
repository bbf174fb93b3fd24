package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/connermo/ai4s/internal/model"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func signToken(t *testing.T, admin bool, exp time.Time) string {
	t.Helper()
	claims := Claims{
		UserID:   1,
		Username: "admin",
		IsAdmin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-24 * time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestInspect(t *testing.T) {
	t.Parallel()

	claims, err := Inspect(signToken(t, true, now.Add(time.Hour)), now)
	if err != nil {
		t.Fatalf("Inspect valid: %v", err)
	}
	if claims.Username != "admin" || !claims.IsAdmin || claims.UserID != 1 {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := Inspect(signToken(t, true, now.Add(-time.Minute)), now); !errors.Is(err, ErrExpired) {
		t.Fatalf("Inspect expired err = %v, want ErrExpired", err)
	}
	if _, err := Inspect("not-a-jwt", now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Inspect garbage err = %v, want ErrInvalidToken", err)
	}
	if _, err := Inspect("  ", now); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Inspect empty err = %v, want ErrNoSession", err)
	}
}

func TestFromLoginRequiresAdmin(t *testing.T) {
	t.Parallel()

	resp := model.LoginResponse{Token: signToken(t, false, now.Add(time.Hour)), User: model.User{ID: 3, Username: "bob"}}
	if _, err := FromLogin(resp, "http://api", now); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("FromLogin non-admin err = %v, want ErrNotAdmin", err)
	}

	resp.Token = signToken(t, true, now.Add(time.Hour))
	sess, err := FromLogin(resp, "http://api", now)
	if err != nil {
		t.Fatalf("FromLogin: %v", err)
	}
	if sess.Username != "bob" || sess.UserID != 3 || !sess.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("session = %+v", sess)
	}
	if err := sess.Validate(now); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := sess.Validate(now.Add(2 * time.Hour)); !errors.Is(err, ErrExpired) {
		t.Fatalf("Validate later err = %v, want ErrExpired", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "session.yml")
	store := NewStore(path)

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load missing err = %v, want ErrNoSession", err)
	}

	want := Session{Token: signToken(t, true, now.Add(time.Hour)), Username: "admin", UserID: 1, SavedAt: now}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != want.Token || got.Username != want.Username || !got.SavedAt.Equal(want.SavedAt) {
		t.Fatalf("loaded = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load after Clear err = %v, want ErrNoSession", err)
	}
}

func TestStoreRejectsGarbage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.yml")
	if err := os.WriteFile(path, []byte("token: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil || errors.Is(err, ErrNoSession) {
		t.Fatalf("Load garbage err = %v, want decode error", err)
	}
}
