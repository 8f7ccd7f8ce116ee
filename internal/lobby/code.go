// internal/lobby/code.go
package lobby

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is uppercase letters and digits minus the visually
// confusable 0, O, I and 1. 32 characters, so an 8-char code gives a
// 32^8 space; random collisions are rechecked against the store.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// LobbyCodeLength is the length of a shareable private lobby code.
const LobbyCodeLength = 8

// GenerateLobbyCode returns a random human-shareable code. Uniqueness
// is the caller's job (retry against the store until unused).
func GenerateLobbyCode() (string, error) {
	buf := make([]byte, LobbyCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes for lobby code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
