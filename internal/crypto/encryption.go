package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks values produced by Seal. Values without it are treated
// as plaintext, which keeps sessions stored before a key was configured
// readable.
const sealedPrefix = "enc:v1:"

var (
	ErrInvalidCiphertext = errors.New("ciphertext is too short or invalid")
	ErrMissingKey        = errors.New("value is encrypted but no encryption key is configured")
)

// TextCipher encrypts free text (source text, filtering context) before it is
// stored. A nil *TextCipher stores plaintext.
type TextCipher struct {
	aead cipher.AEAD
}

// NewTextCipher derives an AES-256-GCM cipher from keyString. The key is
// hashed using SHA256 to ensure it's exactly 32 bytes. An empty keyString
// yields a nil cipher.
func NewTextCipher(keyString string) (*TextCipher, error) {
	if keyString == "" {
		return nil, nil
	}
	hash := sha256.Sum256([]byte(keyString))

	block, err := aes.NewCipher(hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &TextCipher{aead: gcm}, nil
}

// Enabled reports whether values are encrypted.
func (c *TextCipher) Enabled() bool {
	return c != nil
}

// Seal encrypts plaintext. Empty strings stay empty.
func (c *TextCipher) Seal(plaintext string) (string, error) {
	if c == nil || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal. Values that were stored as plaintext are returned
// unchanged.
func (c *TextCipher) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if c == nil {
		return "", ErrMissingKey
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}
