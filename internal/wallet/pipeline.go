package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dagbolade/checkout-wallet/internal/audit"
	"github.com/dagbolade/checkout-wallet/internal/authz"
	"github.com/dagbolade/checkout-wallet/internal/policy"
	"github.com/dagbolade/checkout-wallet/internal/token"
	"github.com/dagbolade/checkout-wallet/internal/vault"
)

// Pipeline orchestrates the vault, the policy document, the
// authorization engine, the audit log, and the token store into the
// four operations an external collaborator calls. It owns none of
// its collaborators' lifecycles beyond what it is explicitly given;
// the caller constructs and closes them.
type Pipeline struct {
	vault    *vault.Vault
	policies PolicyProvider
	audit    audit.Store
	tokens   *token.Store
}

// New wires a Pipeline from already-open collaborators.
func New(v *vault.Vault, policies PolicyProvider, auditStore audit.Store, tokens *token.Store) *Pipeline {
	return &Pipeline{vault: v, policies: policies, audit: auditStore, tokens: tokens}
}

// RequestCredential runs the full grant sequence of spec §4.7: log the
// request, fetch this month's spend, evaluate every policy in the
// document (EvaluateFirst keeps those for the requested credential),
// and on allow, fetch the credential and issue a token. The agent
// pre-filter is not applied here, so a denial names the check that
// failed rather than reporting that no policy exists.
func (p *Pipeline) RequestCredential(ctx context.Context, req CredentialRequest) (CredentialResponse, error) {
	if _, err := p.audit.Log(ctx, audit.Entry{
		Event:          audit.EventCredentialRequested,
		AgentID:        req.AgentID,
		SkillID:        req.SkillID,
		Purpose:        req.Purpose,
		CredentialName: req.CredentialName,
		Context:        marshalContext(req.Context),
	}); err != nil {
		return CredentialResponse{}, fmt.Errorf("wallet: logging credential_requested: %w", err)
	}

	candidates := p.policies.Current().List()

	monthlySpending, err := p.audit.MonthlySpending(ctx, req.CredentialName, "")
	if err != nil {
		return CredentialResponse{}, fmt.Errorf("wallet: computing monthly spending: %w", err)
	}

	result := authz.EvaluateFirst(candidates, toAuthzRequest(req), monthlySpending)

	switch result.Decision {
	case authz.Deny:
		if _, err := p.audit.Log(ctx, audit.Entry{
			Event:          audit.EventCredentialDenied,
			Policy:         result.PolicyName,
			AgentID:        req.AgentID,
			SkillID:        req.SkillID,
			CredentialName: req.CredentialName,
			Outcome:        string(result.Decision),
			Details:        result.Reason,
		}); err != nil {
			return CredentialResponse{}, fmt.Errorf("wallet: logging credential_denied: %w", err)
		}
		return CredentialResponse{Status: StatusDenied, Reason: result.Reason, Policy: result.PolicyName}, nil

	case authz.RequireApproval:
		if _, err := p.audit.Log(ctx, audit.Entry{
			Event:          audit.EventApprovalRequired,
			Policy:         result.PolicyName,
			AgentID:        req.AgentID,
			SkillID:        req.SkillID,
			CredentialName: req.CredentialName,
			Details:        result.Reason,
		}); err != nil {
			return CredentialResponse{}, fmt.Errorf("wallet: logging approval_required: %w", err)
		}
		return CredentialResponse{Status: StatusRequireApproval, Reason: result.Reason, Policy: result.PolicyName}, nil
	}

	cred, err := p.vault.Get(req.CredentialName)
	if err != nil {
		return CredentialResponse{}, err
	}
	if cred == nil {
		return CredentialResponse{Status: StatusError, Reason: fmt.Sprintf("credential %q not found", req.CredentialName)}, nil
	}

	ttl := policy.DefaultTTL
	if matched := p.policies.Current().Get(result.PolicyName); matched != nil {
		ttl = matched.EffectiveTTL()
	}

	tok := p.tokens.Issue(token.IssueParams{
		CredentialName:  req.CredentialName,
		CredentialValue: string(cred.Value),
		PolicyName:      result.PolicyName,
		AgentID:         req.AgentID,
		SkillID:         req.SkillID,
		Scope:           result.Scope,
		TTLSeconds:      ttl,
	})

	if _, err := p.audit.Log(ctx, audit.Entry{
		Event:          audit.EventCredentialGranted,
		Policy:         result.PolicyName,
		AgentID:        req.AgentID,
		SkillID:        req.SkillID,
		CredentialName: req.CredentialName,
		TokenID:        tok.TokenID,
		Scope:          marshalScope(result.Scope),
	}); err != nil {
		return CredentialResponse{}, fmt.Errorf("wallet: logging credential_granted: %w", err)
	}

	return CredentialResponse{
		Status:          StatusGranted,
		TokenID:         tok.TokenID,
		CredentialValue: tok.CredentialValue,
		ExpiresAt:       formatExpiresAt(tok.ExpiresAt),
		Scope:           result.Scope,
		Policy:          result.PolicyName,
	}, nil
}

// ListAvailablePolicies returns the projection list_for_agent exposes
// upstream: never condition, deny, or scope.
func (p *Pipeline) ListAvailablePolicies(agentID string, skillID *string) []PolicySummary {
	candidates := p.policies.Current().ListForAgent(agentID, skillID)
	summaries := make([]PolicySummary, 0, len(candidates))
	for _, c := range candidates {
		summary := PolicySummary{
			Name:        c.Name,
			Description: c.Description,
			Credential:  c.Credential,
			Actions:     c.Actions,
			TTL:         c.EffectiveTTL(),
		}
		if c.Budget != nil {
			summary.MaxPerTx = c.Budget.MaxPerTransaction
			summary.MaxPerMonth = c.Budget.MaxPerMonth
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// CheckBudget resolves policyName if given, else the first policy
// whose credential matches credentialName, and reports remaining
// monthly budget.
func (p *Pipeline) CheckBudget(ctx context.Context, credentialName, policyName string) (BudgetStatus, error) {
	var pol *policy.Policy
	if policyName != "" {
		pol = p.policies.Current().Get(policyName)
	} else {
		for _, candidate := range p.policies.Current().List() {
			if candidate.Credential == credentialName {
				match := candidate
				pol = &match
				break
			}
		}
	}
	if pol == nil {
		return BudgetStatus{}, ErrNotFound
	}

	if pol.Budget == nil || pol.Budget.MaxPerMonth == nil {
		return BudgetStatus{Budget: "unlimited"}, nil
	}

	spent, err := p.audit.MonthlySpending(ctx, credentialName, "")
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("wallet: computing monthly spending: %w", err)
	}

	limit := *pol.Budget.MaxPerMonth
	remaining := limit - spent
	if remaining < 0 {
		remaining = 0
	}

	currency := pol.Budget.Currency
	if currency == "" {
		currency = "USD"
	}

	return BudgetStatus{
		Policy:            pol.Name,
		Credential:        pol.Credential,
		MaxPerMonth:       limit,
		SpentThisMonth:    spent,
		Remaining:         remaining,
		Currency:          currency,
		MaxPerTransaction: pol.Budget.MaxPerTransaction,
	}, nil
}

// ReportUsage marks a token used and appends a credential_used entry.
func (p *Pipeline) ReportUsage(ctx context.Context, tokenID string, amount *float64, currency, outcome, details string) (UsageStatus, error) {
	tok, ok := p.tokens.Get(tokenID)
	if !ok {
		return UsageStatus{Status: StatusError}, nil
	}
	p.tokens.MarkUsed(tokenID)

	entryDetails := details
	if amount != nil {
		if currency == "" {
			currency = "USD"
		}
		payload, err := json.Marshal(map[string]any{"amount": *amount, "currency": currency, "details": details})
		if err != nil {
			return UsageStatus{}, fmt.Errorf("wallet: marshaling usage details: %w", err)
		}
		entryDetails = string(payload)
	}

	if _, err := p.audit.Log(ctx, audit.Entry{
		Event:          audit.EventCredentialUsed,
		Policy:         tok.PolicyName,
		AgentID:        tok.AgentID,
		SkillID:        tok.SkillID,
		CredentialName: tok.CredentialName,
		TokenID:        tok.TokenID,
		Scope:          marshalScope(tok.Scope),
		Outcome:        outcome,
		Details:        entryDetails,
	}); err != nil {
		return UsageStatus{}, fmt.Errorf("wallet: logging credential_used: %w", err)
	}

	return UsageStatus{Status: StatusRecorded, TokenID: tokenID}, nil
}

func toAuthzRequest(req CredentialRequest) authz.Request {
	return authz.Request{
		CredentialName: req.CredentialName,
		AgentID:        req.AgentID,
		SkillID:        req.SkillID,
		Purpose:        req.Purpose,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Action:         req.Action,
		Context:        req.Context,
	}
}

func marshalContext(ctxMap map[string]any) string {
	if len(ctxMap) == 0 {
		return ""
	}
	encoded, err := json.Marshal(ctxMap)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func marshalScope(scope map[string]string) string {
	if len(scope) == 0 {
		return ""
	}
	encoded, err := json.Marshal(scope)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func formatExpiresAt(expiresAtMs int64) string {
	return time.UnixMilli(expiresAtMs).UTC().Format("2006-01-02T15:04:05.000Z")
}
