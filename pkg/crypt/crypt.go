// Package crypt provides AES-GCM authenticated encryption for small secrets.
//
// Ciphertext is base64url-encoded with the random nonce prefixed, so a single
// string can be written to a file or database column. ordersync uses it to
// keep the persisted session token opaque at rest.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ordersync/ordersync/config"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// key derives a 32-byte AES-256 key from APP_KEY.
func key() ([]byte, error) {
	secret := config.AppKey()
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}
	h := sha256.Sum256([]byte(secret))
	return h[:], nil
}

// Encrypt encrypts plaintext with AES-256-GCM and returns a base64url string
// in the form base64url(nonce || ciphertext || tag).
func Encrypt(plaintext string) (string, error) {
	k, err := key()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return "", fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("crypt: new GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encoded string) (string, error) {
	k, err := key()
	if err != nil {
		return "", err
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return "", fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("crypt: new GCM: %w", err)
	}

	if len(data) < gcm.NonceSize() {
		return "", ErrDecrypt
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
