package usecase

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewAuthService(AuthConfig{
		Username:     "commissioner",
		PasswordHash: string(hash),
		TokenSecret:  "test-secret",
		TokenTTL:     time.Hour,
	})
}

func TestAuthService_LoginAndAuthorize(t *testing.T) {
	auth := newTestAuth(t)
	ctx := t.Context()

	token, err := auth.Login(ctx, "commissioner", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.Token == "" || !token.ExpiresAt.After(time.Now()) {
		t.Fatalf("unexpected token: %+v", token)
	}

	capability, err := auth.Authorize(ctx, token.Token)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !capability.IsAuthorized || capability.Subject != "commissioner" {
		t.Fatalf("unexpected capability: %+v", capability)
	}
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "commissioner", "hunter3"},
		{"wrong username", "someone", "hunter2"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Login(t.Context(), tt.username, tt.password); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthService_AuthorizeRejectsBadTokens(t *testing.T) {
	auth := newTestAuth(t)
	ctx := t.Context()

	expired := newTestAuth(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Login(ctx, "commissioner", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := newTestAuth(t)
	other.cfg.TokenSecret = "another-secret"
	foreign, err := other.Login(ctx, "commissioner", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"expired":      stale.Token,
		"wrong secret": foreign.Token,
	} {
		if _, err := auth.Authorize(ctx, token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestAuthService_NotConfigured(t *testing.T) {
	auth := NewAuthService(AuthConfig{})
	if _, err := auth.Login(t.Context(), "a", "b"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if _, err := auth.Authorize(t.Context(), "token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
