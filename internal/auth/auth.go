// Package auth gates the taskboard API behind a single configured identity.
// A successful login yields a signed bearer token that expires after the
// configured lifetime.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour

	userID = "1"
	issuer = "taskboard"
)

var (
	// ErrInvalidCredentials is returned when a login does not match the allowed identity.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken covers malformed, tampered and expired tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrNotConfigured is returned when no identity has been set up.
	ErrNotConfigured = errors.New("auth: credentials not configured")
)

// User is the authenticated identity attached to a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Credentials describe the single allowed identity and the signing secret.
type Credentials struct {
	Email       string
	Password    string
	Secret      string
	DisplayName string
	TTL         time.Duration
}

// CredentialsFromEnv reads TASKBOARD_EMAIL, TASKBOARD_PASSWORD and
// TASKBOARD_SECRET. Display name and TTL come from config.
func CredentialsFromEnv(displayName string, ttl time.Duration) Credentials {
	return Credentials{
		Email:       strings.TrimSpace(os.Getenv("TASKBOARD_EMAIL")),
		Password:    os.Getenv("TASKBOARD_PASSWORD"),
		Secret:      os.Getenv("TASKBOARD_SECRET"),
		DisplayName: displayName,
		TTL:         ttl,
	}
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Gate checks logins and issues and verifies tokens.
type Gate struct {
	creds Credentials
	clock func() time.Time
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock lets tests control issue and expiry times.
func WithClock(clock func() time.Time) Option {
	return func(g *Gate) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// NewGate builds a gate for creds. A missing TTL falls back to DefaultTTL.
func NewGate(creds Credentials, opts ...Option) *Gate {
	if creds.TTL <= 0 {
		creds.TTL = DefaultTTL
	}
	g := &Gate{creds: creds, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Configured reports whether an identity and secret are available.
func (g *Gate) Configured() bool {
	return g != nil && g.creds.Email != "" && g.creds.Password != "" && g.creds.Secret != ""
}

// Login compares email and password with the allowed identity and issues a
// session on a match.
func (g *Gate) Login(email, password string) (Session, error) {
	if !g.Configured() {
		return Session{}, ErrNotConfigured
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(email)), []byte(g.creds.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.creds.Password)) == 1
	if !emailOK || !passOK {
		return Session{}, ErrInvalidCredentials
	}
	return g.issue()
}

func (g *Gate) issue() (Session, error) {
	now := g.clock().UTC().Truncate(time.Second)
	expires := now.Add(g.creds.TTL)
	user := g.user()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(g.creds.Secret))
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Session{Token: signed, ExpiresAt: expires, User: user}, nil
}

// Verify checks signature and expiry and returns the token's user.
func (g *Gate) Verify(raw string) (User, error) {
	if !g.Configured() {
		return User{}, ErrNotConfigured
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return User{}, ErrInvalidToken
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return []byte(g.creds.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.clock),
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.Subject != userID {
		return User{}, ErrInvalidToken
	}
	return User{ID: parsed.Subject, Email: parsed.Email, Name: parsed.Name}, nil
}

func (g *Gate) user() User {
	return User{ID: userID, Email: g.creds.Email, Name: g.creds.DisplayName}
}
