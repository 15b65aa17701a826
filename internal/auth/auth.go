// Package auth verifies admin credentials and issues and validates the
// bearer tokens that guard the admin API.
package auth

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Admin struct {
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Role         string
}

type Store interface {
	GetAdmin(ctx context.Context, username string) (Admin, error)
}

type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Authenticator struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(store Store, secret string, ttl time.Duration) (*Authenticator, error) {
	if len(secret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 bytes")
	}
	return &Authenticator{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Login checks username and password and returns a signed access token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Token, Admin, error) {
	admin, err := a.store.GetAdmin(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		// keep timing close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Token{}, Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, Admin{}, errors.Wrap(err, "get admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return Token{}, Admin{}, ErrInvalidCredentials
	}

	tok, err := a.Issue(admin)
	if err != nil {
		return Token{}, Admin{}, err
	}
	return tok, admin, nil
}

func (a *Authenticator) Issue(admin Admin) (Token, error) {
	now := a.now().UTC()
	exp := now.Add(a.ttl)
	claims := Claims{
		Name: admin.Name,
		Role: admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, errors.Wrap(err, "sign token")
	}
	return Token{Token: signed, ExpiresAt: exp}, nil
}

// Validate parses a bearer token, checking algorithm, signature and expiry.
func (a *Authenticator) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse token"), ErrInvalidToken)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, errors.Wrap(ErrInvalidToken, "token has no subject")
	}
	return claims, nil
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
