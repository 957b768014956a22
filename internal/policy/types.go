// Package policy implements the declarative policy document model and
// loader (spec component C3): parsing, structural validation, and
// per-agent candidate filtering. Nothing in this package makes an
// authorization decision; that is the authz package's job.
package policy

// Document is the top-level parsed policy file: a version tag plus an
// ordered list of policies. Document order is semantically
// significant (see authz.EvaluateFirst) and must never be reordered
// by the loader.
type Document struct {
	Version  string   `yaml:"version"`
	Policies []Policy `yaml:"policies"`
}

// Policy is a single declarative authorization rule for one
// credential.
type Policy struct {
	Name               string            `yaml:"name"`
	Description        string            `yaml:"description,omitempty"`
	Credential         string            `yaml:"credential"`
	GrantTo            GrantTo           `yaml:"grant_to"`
	Deny               []string          `yaml:"deny,omitempty"`
	Actions            []string          `yaml:"actions,omitempty"`
	Budget             *Budget           `yaml:"budget,omitempty"`
	ApprovalThreshold  *float64          `yaml:"approval_threshold,omitempty"`
	Condition          string            `yaml:"condition,omitempty"`
	Scope              map[string]string `yaml:"scope,omitempty"`
	TTL                int               `yaml:"ttl,omitempty"`
}

// GrantTo is the scope selector attached to a policy: optional agent
// and skill selectors, each either a literal, a list, or the wildcard
// "*".
type GrantTo struct {
	AgentID Selector `yaml:"agent_id,omitempty"`
	SkillID Selector `yaml:"skill_id,omitempty"`
}

// Budget bounds per-transaction and per-month spending under a
// policy.
type Budget struct {
	MaxPerTransaction *float64 `yaml:"max_per_transaction,omitempty"`
	MaxPerMonth       *float64 `yaml:"max_per_month,omitempty"`
	Currency          string   `yaml:"currency,omitempty"`
}

// DefaultTTL is the token lifetime, in seconds, used when a policy
// does not set ttl.
const DefaultTTL = 300

// EffectiveTTL returns the policy's configured ttl, or DefaultTTL if
// unset.
func (p Policy) EffectiveTTL() int {
	if p.TTL <= 0 {
		return DefaultTTL
	}
	return p.TTL
}
