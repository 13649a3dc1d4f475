package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCipherKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestSecretCipherRoundTrip(t *testing.T) {
	c, err := NewSecretCipher(testCipherKey())
	require.NoError(t, err)

	encrypted, err := c.Encrypt("super-secret-api-key")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-api-key", encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-api-key", decrypted)
}

func TestSecretCipherRandomizesNonce(t *testing.T) {
	c, err := NewSecretCipher(testCipherKey())
	require.NoError(t, err)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)

	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "each encryption should use a fresh nonce")
}

func TestSecretCipherKeySize(t *testing.T) {
	_, err := NewSecretCipher([]byte("short"))
	assert.Error(t, err)
}

func TestSecretCipherRejectsTamperedData(t *testing.T) {
	c, err := NewSecretCipher(testCipherKey())
	require.NoError(t, err)

	encrypted, err := c.Encrypt("payload")
	require.NoError(t, err)

	tampered := []byte(encrypted)
	tampered[len(tampered)-5] ^= 'x'

	_, err = c.Decrypt(string(tampered))
	assert.Error(t, err)

	_, err = c.Decrypt("not base64 at all!!!")
	assert.Error(t, err)
}
