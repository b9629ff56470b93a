package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

var testJWTConfig = &JWTConfig{
	Secret:   []byte("test-secret-change-me"),
	Issuer:   "test",
	Audience: "test",
	TTL:      24 * time.Hour,
}

func newTestAuthService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st, testJWTConfig), st
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "ab", "password123", ""); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	if _, _, err := svc.Register(ctx, " ab ", "password123", ""); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "abc", "12345", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "abc", strings.Repeat("x", 73), ""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword for long password, got %v", err)
	}
}

func TestRegister_TrimsUsernameAndCreatesUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, " alice ", "password123", "https://example.com/a.png")
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if user.Username != "alice" || user.Avatar != "https://example.com/a.png" {
		t.Fatalf("unexpected user: %+v", user)
	}

	// Should collide because the stored username is trimmed.
	if _, _, err := svc.Register(ctx, "alice", "password123", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	token, user, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAdmit(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "alice", "password123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Admit(ctx, token)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if identity.UserID != user.ID || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	expired, err := GenerateToken(&JWTConfig{
		Secret:   testJWTConfig.Secret,
		Issuer:   testJWTConfig.Issuer,
		Audience: testJWTConfig.Audience,
		TTL:      -time.Minute,
	}, user.ID, user.Username)
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	wrongKey, err := GenerateToken(&JWTConfig{
		Secret:   []byte("other-secret"),
		Issuer:   testJWTConfig.Issuer,
		Audience: testJWTConfig.Audience,
		TTL:      time.Hour,
	}, user.ID, user.Username)
	if err != nil {
		t.Fatalf("generate foreign token: %v", err)
	}

	ghost, err := GenerateToken(testJWTConfig, "00000000-0000-0000-0000-000000000000", "ghost")
	if err != nil {
		t.Fatalf("generate ghost token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"iss":     testJWTConfig.Issuer,
		"aud":     testJWTConfig.Audience,
	}).SignedString(testJWTConfig.Secret)
	if err != nil {
		t.Fatalf("sign token without expiry: %v", err)
	}

	tests := []struct {
		name       string
		credential string
	}{
		{name: "missing", credential: ""},
		{name: "garbage", credential: "not-a-jwt"},
		{name: "expired", credential: expired},
		{name: "wrong key", credential: wrongKey},
		{name: "unknown user", credential: ghost},
		{name: "no expiry", credential: noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Admit(ctx, tt.credential)
			if !errors.Is(err, ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got %v", err)
			}
			if identity != nil {
				t.Fatalf("rejected credential must not produce an identity")
			}
		})
	}

	if _, err := st.GetUserByID(ctx, user.ID); err != nil {
		t.Fatalf("admit must not alter users: %v", err)
	}
}

func TestCredentialFromHeader(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range tests {
		if got := CredentialFromHeader(header); got != want {
			t.Errorf("CredentialFromHeader(%q) = %q, want %q", header, got, want)
		}
	}
}
