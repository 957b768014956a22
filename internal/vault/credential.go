package vault

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dagbolade/checkout-wallet/internal/walletcrypto"
)

// Add encrypts value under the vault key and inserts a new credential
// row. Returns the fresh record identifier. Fails with ErrVaultLocked
// if the vault has not been initialized or unlocked.
func (v *Vault) Add(name string, kind Kind, value []byte, metadata map[string]string) (string, error) {
	if err := v.requireUnlocked(); err != nil {
		return "", err
	}

	ciphertext, nonce, tag, err := walletcrypto.Encrypt(v.key, value)
	if err != nil {
		return "", err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("vault: marshaling metadata: %w", err)
	}

	id := uuid.New().String()
	now := formatTimestamp(time.Now().UTC())

	_, err = v.db.Exec(queryInsertCredential,
		id, name, string(kind), ciphertext, nonce, tag, string(metadataJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("vault: inserting credential: %w", err)
	}

	return id, nil
}

// Get decrypts and returns the credential named name, or nil if no
// such credential exists.
func (v *Vault) Get(name string) (*Credential, error) {
	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}

	var (
		id, kind, metadataJSON, createdAt, updatedAt string
		ciphertext, nonce, tag                       []byte
	)

	row := v.db.QueryRow(querySelectCredentialByName, name)
	err := row.Scan(&id, &name, &kind, &ciphertext, &nonce, &tag, &metadataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vault: querying credential: %w", err)
	}

	plaintext, err := walletcrypto.Decrypt(v.key, ciphertext, nonce, tag)
	if err != nil {
		return nil, err
	}

	metadata, err := decodeMetadata(metadataJSON)
	if err != nil {
		return nil, err
	}

	createdTime, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	updatedTime, err := parseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}

	return &Credential{
		ID:        id,
		Name:      name,
		Kind:      Kind(kind),
		Value:     plaintext,
		Metadata:  metadata,
		CreatedAt: createdTime,
		UpdatedAt: updatedTime,
	}, nil
}

// List returns every credential's non-secret attributes. Plaintext
// values are never included.
func (v *Vault) List() ([]CredentialSummary, error) {
	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}

	rows, err := v.db.Query(querySelectCredentialSummaries)
	if err != nil {
		return nil, fmt.Errorf("vault: listing credentials: %w", err)
	}
	defer rows.Close()

	var summaries []CredentialSummary
	for rows.Next() {
		var id, name, kind, metadataJSON, createdAt, updatedAt string
		if err := rows.Scan(&id, &name, &kind, &metadataJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("vault: scanning credential summary: %w", err)
		}

		metadata, err := decodeMetadata(metadataJSON)
		if err != nil {
			return nil, err
		}
		createdTime, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		updatedTime, err := parseTimestamp(updatedAt)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, CredentialSummary{
			ID:        id,
			Name:      name,
			Kind:      Kind(kind),
			Metadata:  metadata,
			CreatedAt: createdTime,
			UpdatedAt: updatedTime,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterating credential summaries: %w", err)
	}

	return summaries, nil
}

// Remove deletes the credential named name. Returns false (not an
// error) if no row matched.
func (v *Vault) Remove(name string) (bool, error) {
	if err := v.requireUnlocked(); err != nil {
		return false, err
	}

	result, err := v.db.Exec(queryDeleteCredentialByName, name)
	if err != nil {
		return false, fmt.Errorf("vault: removing credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("vault: checking rows affected: %w", err)
	}
	return affected > 0, nil
}

func decodeMetadata(metadataJSON string) (map[string]string, error) {
	metadata := map[string]string{}
	if metadataJSON == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return nil, fmt.Errorf("vault: decoding metadata: %w", err)
	}
	return metadata, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("vault: parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
