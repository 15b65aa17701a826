package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/robertarktes/hotel-paradise/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mapStore map[string]Admin

func (m mapStore) GetAdmin(_ context.Context, username string) (Admin, error) {
	a, ok := m[username]
	if !ok {
		return Admin{}, domain.ErrNotFound
	}
	return a, nil
}

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAuthenticator(mapStore{
		"admin": {Username: "admin", PasswordHash: hash, Name: "Front Desk", Role: RoleAdmin},
	}, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestLogin(t *testing.T) {
	a := newTestAuthenticator(t)

	tok, admin, err := a.Login(context.Background(), "admin", "correct horse")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("expected admin role, got %q", admin.Role)
	}
	claims, err := a.Validate(tok.Token)
	if err != nil {
		t.Fatalf("expected issued token to validate, got %v", err)
	}
	if claims.Subject != "admin" || claims.Role != RoleAdmin {
		t.Errorf("unexpected claims %+v", claims)
	}

	for _, tc := range [][2]string{{"admin", "wrong"}, {"ghost", "correct horse"}, {"admin", ""}} {
		if _, _, err := a.Login(context.Background(), tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("login %q/%q: expected invalid credentials, got %v", tc[0], tc[1], err)
		}
	}
}

func TestValidate_RejectsBadTokens(t *testing.T) {
	a := newTestAuthenticator(t)
	good, err := a.Issue(Admin{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}

	other, _ := NewAuthenticator(mapStore{}, strings.Repeat("x", 32), time.Hour)
	forged, _ := other.Issue(Admin{Username: "admin", Role: RoleAdmin})

	expired := newTestAuthenticator(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue(Admin{Username: "admin", Role: RoleAdmin})

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin", "role": RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":     "mock",
		"wrong key":   forged.Token,
		"expired":     stale.Token,
		"alg none":    none,
		"tampered":    good.Token + "x",
		"empty token": "",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Validate(raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected invalid token, got %v", err)
			}
		})
	}
}

func TestNewAuthenticator_ShortSecret(t *testing.T) {
	if _, err := NewAuthenticator(mapStore{}, "short", time.Hour); err == nil {
		t.Error("expected short secrets to be rejected")
	}
}
