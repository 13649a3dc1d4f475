package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

const secretKeySize = 32

var ErrDecryptFailed = errors.New("secret decryption failed")

// SecretCipher encrypts API secrets at rest with AES-256-GCM.
// The stored form is base64(nonce || ciphertext).
type SecretCipher struct {
	aead cipher.AEAD
}

func NewSecretCipher(key []byte) (*SecretCipher, error) {
	if len(key) != secretKeySize {
		return nil, errors.Errorf("encryption key must be %d bytes, got %d", secretKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &SecretCipher{aead: aead}, nil
}

func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *SecretCipher) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "stored secret is not base64")
	}

	ns := c.aead.NonceSize()
	if len(data) < ns {
		return "", ErrDecryptFailed
	}

	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}
