package vault

const (
	queryUpsertMeta = `
		INSERT INTO wallet_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	querySelectMeta = `SELECT value FROM wallet_meta WHERE key = ?`

	queryInsertCredential = `
		INSERT INTO credentials
			(id, name, type, encrypted_data, iv, auth_tag, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	querySelectCredentialByName = `
		SELECT id, name, type, encrypted_data, iv, auth_tag, metadata, created_at, updated_at
		FROM credentials WHERE name = ?`

	querySelectCredentialSummaries = `
		SELECT id, name, type, metadata, created_at, updated_at
		FROM credentials ORDER BY name`

	queryDeleteCredentialByName = `DELETE FROM credentials WHERE name = ?`

	timestampLayout = "2006-01-02T15:04:05.000Z"
)
