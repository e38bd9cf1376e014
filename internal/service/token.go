package service

import (
	"crypto/rand"
	"fmt"
)

// Link tokens are short opaque identifiers carried in payment URLs.
// 10 base62 characters give ~59 bits of entropy, so collisions are
// practically impossible; the creation path still retries on a
// duplicate-key insert rather than assuming they cannot happen.
const (
	tokenLength   = 10
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewToken generates a fresh link token from crypto/rand.
func NewToken() (string, error) {
	out := make([]byte, tokenLength)
	buf := make([]byte, 1)
	// Rejection sampling keeps the alphabet distribution uniform.
	limit := byte(256 - 256%len(tokenAlphabet))
	for i := 0; i < tokenLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		out[i] = tokenAlphabet[int(buf[0])%len(tokenAlphabet)]
		i++
	}
	return string(out), nil
}
