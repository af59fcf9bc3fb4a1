// Package crypto derives the 32-byte keys used to authenticate CSRF tokens.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// KeySize is the key length gorilla/csrf expects.
const KeySize = 32

// GenerateKeyBytes generates a new random 32-byte key.
func GenerateKeyBytes() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// KeyFromSecret turns a configured secret into a key. A 64-character hex
// string is used as is; any other value is hashed down to KeySize bytes.
func KeyFromSecret(secret string) []byte {
	secret = strings.TrimSpace(secret)
	if len(secret) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(secret); err == nil {
			return key
		}
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
