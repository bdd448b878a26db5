// Package encryption provides AES-256-GCM encryption for provider
// credentials at rest.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for key derivation. The salt is fixed per application:
// the key material itself is the secret, derivation only hardens it.
var keySalt = []byte("promptgate-credential-store-v1")

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLen       = 32
)

// Encryptor provides encryption/decryption for sensitive data
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AES implements AES-256-GCM with an argon2id-derived key
type AES struct {
	key []byte
}

// New creates an encryptor with a derived key.
// Priority: PROMPTGATE_ENCRYPTION_KEY env var > machine-derived key
func New() (*AES, error) {
	keyMaterial := os.Getenv("PROMPTGATE_ENCRYPTION_KEY")
	if keyMaterial == "" {
		keyMaterial = deriveMachineKey()
	}

	key := argon2.IDKey([]byte(keyMaterial), keySalt, argonTime, argonMemory, argonThreads, keyLen)
	return &AES{key: key}, nil
}

// NewWithKey creates an encryptor with a specific key (for testing)
func NewWithKey(key []byte) (*AES, error) {
	if len(key) != keyLen {
		return nil, errors.New("key must be 32 bytes for AES-256")
	}
	return &AES{key: key}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM
func (e *AES) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts ciphertext using AES-256-GCM
func (e *AES) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// deriveMachineKey builds key material from stable machine identity, so
// the store survives restarts without operator-managed secrets.
func deriveMachineKey() string {
	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return hostname + "|" + home + "|" + runtime.GOOS
}
