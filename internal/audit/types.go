package audit

import "context"

// Event is the closed set of things worth recording. Entries are
// produced by the wallet pipeline; nothing in this package validates
// that an Event string belongs to the set, since the closed set lives
// entirely at the call sites that produce entries.
type Event string

const (
	EventCredentialRequested Event = "credential_requested"
	EventCredentialGranted   Event = "credential_granted"
	EventCredentialDenied    Event = "credential_denied"
	EventCredentialUsed      Event = "credential_used"
	EventApprovalRequired    Event = "approval_required"
	EventTokenExpired        Event = "token_expired"
	EventVaultUnlocked       Event = "vault_unlocked"
	EventVaultLocked         Event = "vault_locked"
	EventCredentialAdded     Event = "credential_added"
	EventCredentialRemoved   Event = "credential_removed"
)

// Entry is one row of the append-only audit log. Timestamp is
// ISO-8601 UTC with a Z suffix; Log fills it in when empty. Scope and
// Context are pre-serialized JSON text, never structured values, so
// this package never needs to know their shape.
type Entry struct {
	ID             int64
	Timestamp      string
	Event          Event
	Policy         string
	AgentID        string
	SkillID        string
	Purpose        string
	TokenID        string
	CredentialName string
	Scope          string
	Context        string
	Outcome        string
	Approval       string
	Details        string
}

// QueryFilters narrows Query results. Zero values mean "no filter" for
// that field; Limit of 0 means unbounded.
type QueryFilters struct {
	Event   Event
	Policy  string
	AgentID string
	Since   string
	Limit   int
}

// Store is the durable, append-only audit log (spec component C5).
type Store interface {
	Log(ctx context.Context, entry Entry) (int64, error)
	Query(ctx context.Context, filters QueryFilters) ([]Entry, error)
	MonthlySpending(ctx context.Context, credentialName, month string) (float64, error)
	Close() error
}
