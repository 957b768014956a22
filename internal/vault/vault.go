// Package vault implements the encrypted-at-rest credential store
// (spec component C2). Credentials are persisted in a SQLite database
// gated by a passphrase-derived AES-256 key; nothing plaintext ever
// touches disk.
package vault

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dagbolade/checkout-wallet/internal/walletcrypto"
)

// Sentinel errors for vault-state violations (spec §7). Callers
// should check with errors.Is, never by comparing error text.
var (
	ErrVaultLocked        = errors.New("vault: locked")
	ErrNotInitialized     = errors.New("vault: not initialized")
	ErrAlreadyInitialized = errors.New("vault: already initialized")
)

// metaKeySalt and metaKeySchemaVersion are the rows written to
// wallet_meta at Initialize time.
const (
	metaKeySalt          = "salt"
	metaKeySchemaVersion = "schema_version"
	schemaVersion        = "1"
)

// Vault is a single-threaded, passphrase-gated credential store. It
// is not safe for concurrent use from multiple goroutines; the
// request pipeline (C7) is the vault's only owner.
type Vault struct {
	db  *sql.DB
	key *walletcrypto.Key
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the wallet schema exists. It does not derive a key; call
// Initialize or Unlock before any credential operation.
func Open(path string) (*Vault, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}

	v := &Vault{db: db}
	if err := v.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return v, nil
}

// Initialize generates a fresh salt, derives the vault key from
// passphrase, and atomically writes the salt and schema version to
// wallet_meta. Fails with ErrAlreadyInitialized if a salt already
// exists.
func (v *Vault) Initialize(passphrase string) error {
	existing, err := v.readMeta(metaKeySalt)
	if err != nil {
		return err
	}
	if existing != "" {
		return ErrAlreadyInitialized
	}

	salt, err := walletcrypto.GenerateSalt()
	if err != nil {
		return err
	}

	key, err := walletcrypto.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	tx, err := v.db.Begin()
	if err != nil {
		key.Close()
		return fmt.Errorf("vault: beginning init transaction: %w", err)
	}

	if _, err := tx.Exec(queryUpsertMeta, metaKeySalt, encodeSalt(salt)); err != nil {
		tx.Rollback()
		key.Close()
		return fmt.Errorf("vault: writing salt: %w", err)
	}
	if _, err := tx.Exec(queryUpsertMeta, metaKeySchemaVersion, schemaVersion); err != nil {
		tx.Rollback()
		key.Close()
		return fmt.Errorf("vault: writing schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		key.Close()
		return fmt.Errorf("vault: committing init transaction: %w", err)
	}

	v.key = key
	return nil
}

// Unlock derives the vault key from passphrase using the persisted
// salt. It does not verify the passphrase; verification is implicit
// in the first successful Get, via AES-GCM tag authentication. Fails
// with ErrNotInitialized if no salt is present.
func (v *Vault) Unlock(passphrase string) error {
	encodedSalt, err := v.readMeta(metaKeySalt)
	if err != nil {
		return err
	}
	if encodedSalt == "" {
		return ErrNotInitialized
	}

	salt, err := decodeSalt(encodedSalt)
	if err != nil {
		return fmt.Errorf("vault: decoding stored salt: %w", err)
	}

	key, err := walletcrypto.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	v.key = key
	return nil
}

// Close zeroes the derived key (if any) and closes the underlying
// database connection.
func (v *Vault) Close() error {
	if v.key != nil {
		v.key.Close()
		v.key = nil
	}
	return v.db.Close()
}

func (v *Vault) requireUnlocked() error {
	if v.key == nil {
		return ErrVaultLocked
	}
	return nil
}
