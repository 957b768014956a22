package walletcrypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Argon2id parameters. These match the spec's fixed profile exactly
// and must not be tuned per-machine: changing them changes the
// derived key for a passphrase that already unlocks an existing
// vault.
const (
	argon2Memory      = 64 * 1024 // KiB, i.e. 64 MiB
	argon2Iterations  = 3
	argon2Parallelism = 1
	argon2KeyLen      = 32
)

// DeriveKey turns a passphrase and vault salt into the AES-256 key
// used for credential encryption. Derivation runs Argon2id over
// (passphrase, salt), then feeds the 32-byte Argon2id output through
// HKDF-SHA256 (salt = the vault salt, info = the fixed
// domain-separation string) to produce the final key.
//
// The HKDF pass after Argon2id is deliberate domain separation and
// must be preserved bit-exact for on-disk compatibility with any
// vault created by an earlier build of this package.
func DeriveKey(passphrase string, salt []byte) (*Key, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("walletcrypto: salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	argonOutput := argon2.IDKey([]byte(passphrase), salt, argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLen)
	defer Zero(argonOutput)

	reader := hkdf.New(sha256.New, argonOutput, salt, hkdfInfo)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		Zero(derived)
		return nil, fmt.Errorf("walletcrypto: HKDF key derivation failed: %w", err)
	}

	return &Key{bytes: derived}, nil
}

// Zero overwrites b with zeros in place. Used to scrub intermediate
// key material (e.g. the raw Argon2id output) that never gets its own
// Key wrapper.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
