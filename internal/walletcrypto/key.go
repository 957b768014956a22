// Package walletcrypto implements the credential wallet's encryption
// primitives: salt generation, Argon2id+HKDF key derivation, and
// AES-256-GCM authenticated encryption.
package walletcrypto

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// SaltSize is the length in bytes of the random salt generated at
// vault initialization and persisted alongside the encrypted store.
const SaltSize = 32

// KeySize is the length in bytes of the derived AES-256 key.
const KeySize = 32

// hkdfInfo is the fixed domain-separation string mixed into the HKDF
// expansion step. Changing it invalidates every key ever derived, so
// it must be preserved bit-exact for on-disk compatibility.
var hkdfInfo = []byte("checkout-wallet-v1")

// ErrAuthenticationFailed is returned by Decrypt whenever the
// authentication tag does not verify: wrong key, wrong nonce, or
// tampered ciphertext. Callers must not attempt to distinguish these
// causes in user-visible text.
var ErrAuthenticationFailed = errors.New("walletcrypto: authentication failed")

// Key holds a derived 32-byte AES key in a single mutable buffer. The
// buffer is overwritten with zeros exactly once, on Close. It must
// never be logged, serialized, or exposed outside the vault.
type Key struct {
	bytes  []byte
	closed bool
}

// Bytes returns the raw key material. The returned slice aliases the
// Key's internal buffer; callers must not retain it past Close.
func (k *Key) Bytes() []byte {
	if k.closed {
		panic("walletcrypto: use of Key after Close")
	}
	return k.bytes
}

// Close zeroes the key buffer. Idempotent.
func (k *Key) Close() error {
	if k.closed {
		return nil
	}
	for i := range k.bytes {
		k.bytes[i] = 0
	}
	k.closed = true
	return nil
}

// GenerateSalt returns SaltSize cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}
