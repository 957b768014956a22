package vault

import (
	"database/sql"
	"encoding/base64"
	"fmt"
)

// readMeta returns the value for key, or "" if the row does not
// exist.
func (v *Vault) readMeta(key string) (string, error) {
	var value string
	err := v.db.QueryRow(querySelectMeta, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("vault: reading meta %q: %w", key, err)
	}
	return value, nil
}

func encodeSalt(salt []byte) string {
	return base64.StdEncoding.EncodeToString(salt)
}

func decodeSalt(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}
