package security

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKey expands secret into an n-byte key bound to purpose.
func deriveKey(secret, purpose string, n int) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("security: empty secret")
	}
	key := make([]byte, n)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("imagemarket/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("security: derive %s key: %w", purpose, err)
	}
	return key, nil
}
