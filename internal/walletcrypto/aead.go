package walletcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// NonceSize is the length in bytes of the random GCM nonce generated
// per record.
const NonceSize = 12

// TagSize is the length in bytes of the GCM authentication tag.
const TagSize = 16

// Encrypt seals plaintext under key using AES-256-GCM with a fresh
// random 12-byte nonce. The ciphertext and the 16-byte authentication
// tag are returned separately (Go's stdlib AEAD.Seal appends the tag
// to the ciphertext; this function splits it back apart to match the
// three-column persisted layout: encrypted_data, iv, auth_tag).
func Encrypt(key *Key, plaintext []byte) (ciphertext, nonce, tag []byte, err error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("walletcrypto: creating AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("walletcrypto: creating GCM: %w", err)
	}

	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("walletcrypto: generating nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagSize
	ciphertext = sealed[:split]
	tag = sealed[split:]
	return ciphertext, nonce, tag, nil
}

// Decrypt opens a ciphertext/nonce/tag triple produced by Encrypt.
// Any tampering, wrong key, or wrong nonce yields
// ErrAuthenticationFailed; the underlying cipher error is never
// surfaced.
func Decrypt(key *Key, ciphertext, nonce, tag []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrAuthenticationFailed
	}
	if len(tag) != TagSize {
		return nil, ErrAuthenticationFailed
	}

	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("walletcrypto: creating AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("walletcrypto: creating GCM: %w", err)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
