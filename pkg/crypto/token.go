package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

var ErrEmptyToken = errors.New("token and hash cannot be empty")

// TokenBytes is the entropy of a session token (256 bits).
const TokenBytes = 32

// TokenPair holds the bearer token handed to the client and the digest that
// is stored in its place.
type TokenPair struct {
	Token string
	Hash  string
}

// NewToken returns a fresh URL-safe token together with its digest.
func NewToken() (*TokenPair, error) {
	raw := make([]byte, TokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	token := base64.RawURLEncoding.EncodeToString(raw)
	return &TokenPair{Token: token, Hash: HashToken(token)}, nil
}

// HashToken returns the hex SHA-256 digest used as the session lookup key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyToken reports whether storedHash is the digest of token.
func VerifyToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) == 1, nil
}
