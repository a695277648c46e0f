package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Stored values are "v1:<base64 nonce>.<base64 ciphertext>". Values without
// the prefix are returned as-is on decrypt, so rows written before encryption
// was enabled keep working.
const prefix = "v1:"

var ErrBadKeyLength = errors.New("crypto: key must be 32 bytes")

// Box encrypts refresh tokens and email snippets at rest.
type Box struct {
	key []byte
}

// NewBox creates a Box from a base64-encoded 32-byte key.
func NewBox(keyB64 string) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadKeyLength
	}
	return &Box{key: key}, nil
}

func (b *Box) Encrypt(plain string) (string, error) {
	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plain), nil)
	return prefix +
		base64.StdEncoding.EncodeToString(nonce) + "." +
		base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, prefix) {
		return stored, nil
	}

	parts := strings.SplitN(stored[len(prefix):], ".", 2)
	if len(parts) != 2 {
		return "", errors.New("crypto: invalid encrypted payload format")
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("crypto: decode nonce: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("crypto: decode ciphertext: %w", err)
	}

	aead, err := chacha20poly1305.New(b.key)
	if err != nil {
		return "", err
	}
	if len(nonce) != aead.NonceSize() {
		return "", errors.New("crypto: invalid nonce length")
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: open: %w", err)
	}
	return string(plain), nil
}
