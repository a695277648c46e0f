package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	box, err := NewBox(testKey())
	require.NoError(t, err)

	stored, err := box.Encrypt("1//refresh-token-value")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "v1:"))
	assert.NotContains(t, stored, "refresh-token-value")

	plain, err := box.Decrypt(stored)
	require.NoError(t, err)
	assert.Equal(t, "1//refresh-token-value", plain)
}

func TestDecryptPassesThroughLegacyPlaintext(t *testing.T) {
	box, err := NewBox(testKey())
	require.NoError(t, err)

	plain, err := box.Decrypt("legacy-plaintext-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext-token", plain)
}

func TestNewBoxRejectsBadKey(t *testing.T) {
	_, err := NewBox(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrBadKeyLength)

	_, err = NewBox("not-base64!!!")
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedPayload(t *testing.T) {
	box, err := NewBox(testKey())
	require.NoError(t, err)

	stored, err := box.Encrypt("secret")
	require.NoError(t, err)

	tampered := stored[:len(stored)-4] + "AAAA"
	_, err = box.Decrypt(tampered)
	assert.Error(t, err)
}
