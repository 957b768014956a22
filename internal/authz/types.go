// Package authz implements the pure policy decision engine (spec
// component C4). Given a policy, a request, and the caller's current
// monthly spending for the requested credential, it decides allow,
// deny, or require_approval. Nothing here touches the vault, the
// audit log, or the token store; callers inject every fact the engine
// needs to see.
package authz

// Decision is the closed set of outcomes an evaluation can produce.
type Decision string

const (
	Allow           Decision = "allow"
	Deny            Decision = "deny"
	RequireApproval Decision = "require_approval"
)

// Request is the input to a single evaluation: everything the engine
// is allowed to look at when deciding.
type Request struct {
	CredentialName string
	AgentID        string
	SkillID        string
	Purpose        string
	Amount         *float64
	Currency       string
	Action         string
	Context        map[string]any
}

// Result is the outcome of evaluating one or more policies against a
// Request.
type Result struct {
	Decision   Decision
	Reason     string
	PolicyName string
	Scope      map[string]string
}
