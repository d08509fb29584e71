// Package cryptox contains the crypto primitives behind the client's secure
// store: key derivation for the store key and AES-GCM sealing of stored values.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedCiphertext is returned when a sealed value is too short to
// contain its nonce.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

const nonceSize = 12

// DeriveStoreKey derives a 32-byte AES key from a passphrase and salt using
// argon2id. The same (passphrase, salt) pair always yields the same key.
func DeriveStoreKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Seal encrypts plaintext with AES-GCM under key and returns nonce||ciphertext.
// The key must be 16, 24, or 32 bytes. A fresh random nonce is generated for
// every call.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a value produced by Seal.
func Open(sealed, key []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
}
