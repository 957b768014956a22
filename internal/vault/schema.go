package vault

import "fmt"

const (
	schemaWalletMeta = `
		CREATE TABLE IF NOT EXISTS wallet_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`

	schemaCredentials = `
		CREATE TABLE IF NOT EXISTS credentials (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL UNIQUE,
			type           TEXT NOT NULL,
			encrypted_data BLOB NOT NULL,
			iv             BLOB NOT NULL,
			auth_tag       BLOB NOT NULL,
			metadata       TEXT NOT NULL DEFAULT '{}',
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`

	indexCredentialsName = `
		CREATE INDEX IF NOT EXISTS idx_credentials_name ON credentials(name)`
)

func (v *Vault) ensureSchema() error {
	statements := []string{schemaWalletMeta, schemaCredentials, indexCredentialsName}
	for _, stmt := range statements {
		if _, err := v.db.Exec(stmt); err != nil {
			return fmt.Errorf("vault: executing schema statement: %w", err)
		}
	}
	return nil
}
