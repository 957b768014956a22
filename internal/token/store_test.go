package token

import "testing"

func TestIssueAndGet(t *testing.T) {
	clockMs := int64(1_000_000)
	store := newWithClock(func() int64 { return clockMs })

	tok := store.Issue(IssueParams{CredentialName: "stripe-key", CredentialValue: "secret", TTLSeconds: 60})
	if tok.TokenID == "" {
		t.Fatal("expected a non-empty token id")
	}
	if tok.ExpiresAt != tok.IssuedAt+60000 {
		t.Fatalf("ExpiresAt = %d, want %d", tok.ExpiresAt, tok.IssuedAt+60000)
	}

	got, ok := store.Get(tok.TokenID)
	if !ok {
		t.Fatal("expected token to be retrievable before expiry")
	}
	if got.CredentialValue != "secret" {
		t.Fatalf("CredentialValue = %q, want %q", got.CredentialValue, "secret")
	}
}

func TestIssueTakesTTLLiterally(t *testing.T) {
	store := New()
	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 120})
	if tok.ExpiresAt-tok.IssuedAt != 120*1000 {
		t.Fatalf("expected ttl of 120s to be taken literally")
	}
}

func TestGetExpiresAtBoundary(t *testing.T) {
	clockMs := int64(1_000_000)
	store := newWithClock(func() int64 { return clockMs })

	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 60})

	clockMs = tok.ExpiresAt - 1
	if _, ok := store.Get(tok.TokenID); !ok {
		t.Fatal("expected token to still be live one ms before expiry")
	}

	clockMs = tok.ExpiresAt
	if _, ok := store.Get(tok.TokenID); ok {
		t.Fatal("expected token to be expired at exactly expires_at")
	}
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	clockMs := int64(1_000_000)
	store := newWithClock(func() int64 { return clockMs })

	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 0})
	if tok.ExpiresAt != tok.IssuedAt {
		t.Fatalf("TTLSeconds=0 should expire at issued_at")
	}
	if _, ok := store.Get(tok.TokenID); ok {
		t.Fatal("ttl=0 should be unavailable from Get immediately")
	}
}

func TestGetMissingTokenReturnsFalse(t *testing.T) {
	store := New()
	if _, ok := store.Get("does-not-exist"); ok {
		t.Fatal("expected Get to report false for a missing token")
	}
}

func TestMarkUsedIsIdempotent(t *testing.T) {
	store := New()
	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 60})

	if !store.MarkUsed(tok.TokenID) {
		t.Fatal("expected first MarkUsed to succeed")
	}
	if !store.MarkUsed(tok.TokenID) {
		t.Fatal("expected repeated MarkUsed on a live token to keep succeeding")
	}
}

func TestMarkUsedOnExpiredTokenFails(t *testing.T) {
	clockMs := int64(1_000_000)
	store := newWithClock(func() int64 { return clockMs })

	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 60})
	clockMs = tok.ExpiresAt

	if store.MarkUsed(tok.TokenID) {
		t.Fatal("expected MarkUsed to fail once the token has expired")
	}
}

func TestPurgeExpiredIsIdempotent(t *testing.T) {
	clockMs := int64(1_000_000)
	store := newWithClock(func() int64 { return clockMs })

	tok := store.Issue(IssueParams{CredentialName: "c", TTLSeconds: 60})
	clockMs = tok.ExpiresAt + 1

	if n := store.PurgeExpired(); n != 1 {
		t.Fatalf("PurgeExpired() = %d, want 1", n)
	}
	if n := store.PurgeExpired(); n != 0 {
		t.Fatalf("second PurgeExpired() = %d, want 0", n)
	}
	if store.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", store.Size())
	}
}

func TestSize(t *testing.T) {
	store := New()
	store.Issue(IssueParams{CredentialName: "a", TTLSeconds: 60})
	store.Issue(IssueParams{CredentialName: "b", TTLSeconds: 60})
	if store.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", store.Size())
	}
}
