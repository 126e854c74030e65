package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRefreshToken returns a 64-char hex string from a CSPRNG.
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
