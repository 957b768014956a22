package audit

import (
	"context"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLogAssignsIDAndDefaultTimestamp(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Log(ctx, Entry{Event: EventCredentialRequested, AgentID: "test-agent"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	entries, err := store.Query(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Timestamp == "" {
		t.Fatal("expected default timestamp to be assigned")
	}
}

func TestQueryOrdersNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, agent := range []string{"a1", "a2", "a3"} {
		if _, err := store.Log(ctx, Entry{Event: EventCredentialRequested, AgentID: agent}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].AgentID != "a3" || entries[2].AgentID != "a1" {
		t.Fatalf("expected newest-first ordering, got %+v", entries)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Log(ctx, Entry{Event: EventCredentialGranted, AgentID: "a1", Policy: "p1"})
	store.Log(ctx, Entry{Event: EventCredentialDenied, AgentID: "a2", Policy: "p1"})
	store.Log(ctx, Entry{Event: EventCredentialGranted, AgentID: "a2", Policy: "p2"})

	entries, err := store.Query(ctx, QueryFilters{Event: EventCredentialGranted})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilters{AgentID: "a2", Policy: "p2"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilters{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Limit did not restrict result count: %+v", entries)
	}
}

func TestMonthlySpendingSumsCredentialUsedAmounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	month := "2026-08"
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: month + "-01T00:00:00.000Z", Details: `{"amount":300,"currency":"USD"}`})
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: month + "-15T00:00:00.000Z", Details: `{"amount":660,"currency":"USD"}`})
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "other-key", Timestamp: month + "-15T00:00:00.000Z", Details: `{"amount":1000,"currency":"USD"}`})
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: "2026-07-15T00:00:00.000Z", Details: `{"amount":9999,"currency":"USD"}`})

	spent, err := store.MonthlySpending(ctx, "stripe-key", month)
	if err != nil {
		t.Fatalf("MonthlySpending: %v", err)
	}
	if spent != 960 {
		t.Fatalf("spent = %v, want 960", spent)
	}
}

func TestMonthlySpendingSkipsUnparseableDetails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	month := "2026-08"
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: month + "-01T00:00:00.000Z", Details: `{"amount":100}`})
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: month + "-02T00:00:00.000Z", Details: "not json"})
	store.Log(ctx, Entry{Event: EventCredentialUsed, CredentialName: "stripe-key", Timestamp: month + "-03T00:00:00.000Z", Details: `{"details":"no amount field"}`})

	spent, err := store.MonthlySpending(ctx, "stripe-key", month)
	if err != nil {
		t.Fatalf("MonthlySpending: %v", err)
	}
	if spent != 100 {
		t.Fatalf("spent = %v, want 100 (only the parseable entry)", spent)
	}
}

func TestParseAmountDetails(t *testing.T) {
	if amount, ok := ParseAmountDetails(`{"amount":42.5,"currency":"USD"}`); !ok || amount != 42.5 {
		t.Fatalf("ParseAmountDetails = (%v, %v), want (42.5, true)", amount, ok)
	}
	if _, ok := ParseAmountDetails("plain text details"); ok {
		t.Fatal("expected ParseAmountDetails to fail on non-JSON text")
	}
	if _, ok := ParseAmountDetails(""); ok {
		t.Fatal("expected ParseAmountDetails to fail on empty string")
	}
}

func TestSequentialWrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if _, err := store.Log(ctx, Entry{Event: EventCredentialRequested, AgentID: "load-test"}); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	entries, err := store.Query(ctx, QueryFilters{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("len(entries) = %d, want 50", len(entries))
	}
}
