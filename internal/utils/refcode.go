package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// NewReferenceCode creates a short base58 code used for shareable request
// links. 8 random bytes keep collisions below any practical concern while
// staying readable in a URL.
func NewReferenceCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reference code: %w", err)
	}
	return base58.Encode(buf), nil
}
