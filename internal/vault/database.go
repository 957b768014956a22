package vault

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

func openDatabase(path string) (*sql.DB, error) {
	if err := ensureDBDirectory(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vault: opening database: %w", err)
	}

	// The vault is single-threaded from the core's perspective (spec
	// §5); one connection avoids any illusion of safe concurrent access.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vault: pinging database: %w", err)
	}

	if err := configureSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configureSQLite(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("vault: executing pragma %q: %w", pragma, err)
		}
	}

	return nil
}

func ensureDBDirectory(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: creating database directory: %w", err)
	}
	return nil
}
