package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded, append-only implementation of Store.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Log assigns a strictly increasing identifier and, when entry.Timestamp
// is empty, stamps the current UTC time in ISO-8601 with a Z suffix.
func (s *SQLiteStore) Log(ctx context.Context, entry Entry) (int64, error) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampLayout)
	}
	if entry.Event == "" {
		return 0, fmt.Errorf("audit: event is required")
	}

	return s.insertEntry(ctx, entry)
}

// Query returns entries matching filters, newest-first by identifier.
func (s *SQLiteStore) Query(ctx context.Context, filters QueryFilters) ([]Entry, error) {
	query := querySelectColumns
	var args []any
	var conditions []string

	if filters.Event != "" {
		conditions = append(conditions, "event = ?")
		args = append(args, string(filters.Event))
	}
	if filters.Policy != "" {
		conditions = append(conditions, "policy = ?")
		args = append(args, filters.Policy)
	}
	if filters.AgentID != "" {
		conditions = append(conditions, "agent_id = ?")
		args = append(args, filters.AgentID)
	}
	if filters.Since != "" {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filters.Since)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// MonthlySpending sums the amount field embedded in each
// credential_used entry's details JSON for the given credential and
// calendar month (an ISO prefix, e.g. "2026-08"). Unparseable or
// non-numeric details are skipped rather than failing the query.
func (s *SQLiteStore) MonthlySpending(ctx context.Context, credentialName, month string) (float64, error) {
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	rows, err := s.db.QueryContext(ctx, querySelectAmountDetails, string(EventCredentialUsed), credentialName, month+"%")
	if err != nil {
		return 0, fmt.Errorf("query monthly spending: %w", err)
	}
	defer rows.Close()

	var total float64
	for rows.Next() {
		var details sql.NullString
		if err := rows.Scan(&details); err != nil {
			return 0, fmt.Errorf("scan monthly spending row: %w", err)
		}
		if amount, ok := ParseAmountDetails(details.String); ok {
			total += amount
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate monthly spending rows: %w", err)
	}

	return total, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initializeSchema() error {
	for _, stmt := range schemaStatements() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) insertEntry(ctx context.Context, entry Entry) (int64, error) {
	const maxRetries = 3
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		var result sql.Result
		result, err = s.db.ExecContext(ctx, queryInsertEntry,
			entry.Timestamp, string(entry.Event), entry.Policy, entry.AgentID, entry.SkillID,
			entry.Purpose, entry.TokenID, entry.CredentialName, entry.Scope, entry.Context,
			entry.Outcome, entry.Approval, entry.Details)
		if err == nil {
			return result.LastInsertId()
		}

		if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "SQLITE_BUSY") {
			backoff := time.Duration(attempt+1) * 10 * time.Millisecond
			time.Sleep(backoff)
			continue
		}

		return 0, fmt.Errorf("insert entry: %w", err)
	}

	return 0, fmt.Errorf("insert entry after %d retries: %w", maxRetries, err)
}

// ParseAmountDetails extracts a numeric "amount" field from a
// details JSON object, if present and parseable.
func ParseAmountDetails(details string) (float64, bool) {
	if details == "" {
		return 0, false
	}
	var payload struct {
		Amount *float64 `json:"amount"`
	}
	if err := json.Unmarshal([]byte(details), &payload); err != nil {
		return 0, false
	}
	if payload.Amount == nil {
		return 0, false
	}
	return *payload.Amount, true
}
