// Package token implements the in-memory scoped-token store (spec
// component C6): the handle an agent receives instead of the raw
// credential value, good for a bounded lifetime.
package token

// ScopedToken is the record an agent holds after a grant. CredentialValue
// is the plaintext the agent is entitled to use until expiry; nothing
// in this package persists it.
type ScopedToken struct {
	TokenID         string
	CredentialName  string
	CredentialValue string
	PolicyName      string
	AgentID         string
	SkillID         string
	Scope           map[string]string
	IssuedAt        int64
	ExpiresAt       int64
	Used            bool
}

// IssueParams is the input to Issue.
type IssueParams struct {
	CredentialName  string
	CredentialValue string
	PolicyName      string
	AgentID         string
	SkillID         string
	Scope           map[string]string
	TTLSeconds      int
}
