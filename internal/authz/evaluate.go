package authz

import (
	"fmt"

	"github.com/dagbolade/checkout-wallet/internal/policy"
)

// Evaluate runs the nine checks of the engine against a single policy
// in order, short-circuiting on the first failing check. monthlySpending
// is the caller-supplied sum of this month's credential_used amounts
// for the requested credential; the engine never queries the audit log
// itself.
func Evaluate(p policy.Policy, req Request, monthlySpending float64) Result {
	if deny := denyResult(p, req); deny != nil {
		return *deny
	}

	if !p.GrantTo.AgentID.Matches(req.AgentID) {
		return denyf(p.Name, "agent %q is not granted by policy %q", req.AgentID, p.Name)
	}

	if req.SkillID != "" && !p.GrantTo.SkillID.Matches(req.SkillID) {
		return denyf(p.Name, "skill %q is not granted by policy %q", req.SkillID, p.Name)
	}

	if len(p.Actions) > 0 && req.Action != "" && !containsString(p.Actions, req.Action) {
		return denyf(p.Name, "action %q is not permitted by policy %q", req.Action, p.Name)
	}

	if p.Budget != nil && p.Budget.MaxPerTransaction != nil && req.Amount != nil {
		if *req.Amount > *p.Budget.MaxPerTransaction {
			return denyf(p.Name, "amount %.2f exceeds max per transaction (%.2f) for policy %q", *req.Amount, *p.Budget.MaxPerTransaction, p.Name)
		}
	}

	if p.Budget != nil && p.Budget.MaxPerMonth != nil && req.Amount != nil {
		if monthlySpending+*req.Amount > *p.Budget.MaxPerMonth {
			return denyf(p.Name, "monthly budget exceeded for policy %q (spent %.2f, limit %.2f)", p.Name, monthlySpending, *p.Budget.MaxPerMonth)
		}
	}

	if p.ApprovalThreshold != nil && req.Amount != nil && *req.Amount > *p.ApprovalThreshold {
		return Result{
			Decision:   RequireApproval,
			Reason:     fmt.Sprintf("amount %.2f exceeds approval threshold (%.2f) for policy %q", *req.Amount, *p.ApprovalThreshold, p.Name),
			PolicyName: p.Name,
			Scope:      p.Scope,
		}
	}

	if p.Condition != "" {
		ok, err := evaluateCondition(p.Condition, req)
		if err != nil {
			return denyf(p.Name, "condition expression for policy %q failed: %v", p.Name, err)
		}
		if !ok {
			return denyf(p.Name, "condition expression for policy %q evaluated to false", p.Name)
		}
	}

	return Result{
		Decision:   Allow,
		Reason:     fmt.Sprintf("allowed by policy %q", p.Name),
		PolicyName: p.Name,
		Scope:      p.Scope,
	}
}

// EvaluateFirst treats candidates as a priority list scoped to a
// single credential: the first allow or require_approval wins;
// require_approval is terminal even though later policies might have
// allowed. If every candidate denies, the last denial is returned. An
// empty candidate list (or one with no policy matching req's
// credential) is a deny naming the missing credential.
func EvaluateFirst(candidates []policy.Policy, req Request, monthlySpending float64) Result {
	if err := validateRequest(req); err != nil {
		return Result{Decision: Deny, Reason: err.Error()}
	}

	var matching []policy.Policy
	for _, p := range candidates {
		if p.Credential == req.CredentialName {
			matching = append(matching, p)
		}
	}

	if len(matching) == 0 {
		return Result{
			Decision: Deny,
			Reason:   fmt.Sprintf("No policy found for credential %q", req.CredentialName),
		}
	}

	var last Result
	for _, p := range matching {
		result := Evaluate(p, req, monthlySpending)
		if result.Decision == Allow || result.Decision == RequireApproval {
			return result
		}
		last = result
	}
	return last
}

func denyResult(p policy.Policy, req Request) *Result {
	for _, denied := range p.Deny {
		if denied == req.AgentID {
			result := denyf(p.Name, "agent %q is explicitly denied by policy %q", req.AgentID, p.Name)
			return &result
		}
	}
	return nil
}

func denyf(policyName, format string, args ...any) Result {
	return Result{
		Decision:   Deny,
		Reason:     fmt.Sprintf(format, args...),
		PolicyName: policyName,
	}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
