// Package wallet implements the request pipeline (spec component
// C7): the orchestrator that wires the vault, the policy document,
// the authorization engine, the audit log, and the token store into
// the four tool-shaped operations an external collaborator calls.
package wallet

import "errors"

// ErrNotFound reports a missing credential, policy, or token where
// one was expected. Tool-facing responses translate it into either
// {status: "error"} or a policy-shaped denial, per spec §7.
var ErrNotFound = errors.New("wallet: not found")

// CredentialRequest is the input to RequestCredential.
type CredentialRequest struct {
	CredentialName string
	AgentID        string
	SkillID        string
	Purpose        string
	Amount         *float64
	Currency       string
	Action         string
	Context        map[string]any
}

// RequestStatus is the closed set of outcomes RequestCredential can
// report.
type RequestStatus string

const (
	StatusGranted         RequestStatus = "granted"
	StatusRequireApproval RequestStatus = "require_approval"
	StatusDenied          RequestStatus = "denied"
	StatusError           RequestStatus = "error"
	StatusRecorded        RequestStatus = "recorded"
)

// CredentialResponse is the tool-facing result of RequestCredential.
// Only the fields relevant to Status are populated.
type CredentialResponse struct {
	Status          RequestStatus     `json:"status"`
	TokenID         string            `json:"token_id,omitempty"`
	CredentialValue string            `json:"credential_value,omitempty"`
	ExpiresAt       string            `json:"expires_at,omitempty"`
	Scope           map[string]string `json:"scope,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	Policy          string            `json:"policy,omitempty"`
}

// PolicySummary is the projection list_available_policies returns:
// never condition, deny, or scope.
type PolicySummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Credential  string   `json:"credential"`
	Actions     []string `json:"actions,omitempty"`
	MaxPerTx    *float64 `json:"max_per_transaction,omitempty"`
	MaxPerMonth *float64 `json:"max_per_month,omitempty"`
	TTL         int      `json:"ttl"`
}

// BudgetStatus is the response shape of CheckBudget. When the
// matched policy carries no max_per_month, Budget is set to
// "unlimited" and every other field is left zero; handlers must
// serialize that case as the bare {"budget": "unlimited"} object the
// caller expects, not the full shape below.
type BudgetStatus struct {
	Budget            string   `json:"budget,omitempty"`
	Policy            string   `json:"policy,omitempty"`
	Credential        string   `json:"credential,omitempty"`
	MaxPerMonth       float64  `json:"max_per_month,omitempty"`
	SpentThisMonth    float64  `json:"spent_this_month,omitempty"`
	Remaining         float64  `json:"remaining,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	MaxPerTransaction *float64 `json:"max_per_transaction,omitempty"`
}

// UsageStatus is the response shape of ReportUsage.
type UsageStatus struct {
	Status  RequestStatus `json:"status"`
	TokenID string        `json:"token_id,omitempty"`
}
