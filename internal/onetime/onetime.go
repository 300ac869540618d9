// Package onetime generates single-use tokens for email verification and
// password reset. Only the digest of a token is ever stored.
package onetime

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"
)

const DefaultTokenBytes = 32

type Token struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

type Generator struct {
	tokenBytes int
	now        func() time.Time
}

func NewGenerator(tokenBytes int, now func() time.Time) *Generator {
	if tokenBytes <= 0 {
		tokenBytes = DefaultTokenBytes
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{tokenBytes: tokenBytes, now: now}
}

// Generate returns a fresh URL-safe token valid for window.
func (g *Generator) Generate(window time.Duration) (Token, error) {
	if window <= 0 {
		return Token{}, errors.New("onetime: expiry window must be positive")
	}
	b := make([]byte, g.tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return Token{}, err
	}
	raw := base64.RawURLEncoding.EncodeToString(b)
	return Token{
		Raw:       raw,
		Hash:      Digest(raw),
		ExpiresAt: g.now().Add(window),
	}, nil
}

// Digest is the lookup key stored for a raw token.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
