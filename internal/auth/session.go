// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "swick_session"

// ErrNotInitialized is returned when no signing key has been set up.
var ErrNotInitialized = errors.New("session keys not initialized")

// privateKey and publicKey are used for signing and verifying session tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenExpire is how long a session token stays valid (0 => never).
	tokenExpire time.Duration
)

// Session is the stable anonymous identity a browser keeps across
// reconnects. Rejoining a room within the grace window with the same ID
// restores the seat.
type Session struct {
	ID   uuid.UUID
	Name string
}

// Init generates a fresh ed25519 key pair at runtime and sets the token expiration.
func Init(expire time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	publicKey, privateKey = pub, priv
	tokenExpire = expire
	return nil
}

// InitFromPath reads ed25519 private/public keys from file and sets the token expiration.
func InitFromPath(privatePath, publicPath string, expire time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	tokenExpire = expire
	return nil
}

// NewSession mints a session with a fresh ID.
func NewSession(name string) Session {
	return Session{ID: uuid.New(), Name: name}
}

// CreateSessionToken signs s into a token with "sub" = session ID.
func CreateSessionToken(s Session) (string, error) {
	if privateKey == nil {
		return "", ErrNotInitialized
	}
	claims := jwt.MapClaims{
		"sub":  s.ID.String(),
		"name": s.Name,
		"iat":  time.Now().Unix(),
	}
	if tokenExpire > 0 {
		claims["exp"] = time.Now().Add(tokenExpire).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateSession verifies a token and returns the session it carries.
func AuthenticateSession(tokenString string) (Session, error) {
	if publicKey == nil {
		return Session{}, ErrNotInitialized
	}
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return Session{}, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return Session{}, fmt.Errorf("missing sub in jwt")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return Session{}, fmt.Errorf("invalid session id: %w", err)
	}
	name, _ := claims["name"].(string)
	return Session{ID: id, Name: name}, nil
}
