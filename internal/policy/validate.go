package policy

import (
	"errors"
	"fmt"
)

// ErrValidation wraps every structural problem with a policy
// document: unknown version, missing required fields, non-positive
// numeric fields, and the like. Callers should check with errors.Is
// and read the wrapped message for the offending path.
var ErrValidation = errors.New("policy: validation error")

func validate(doc *Document) error {
	if doc.Version != supportedVersion {
		return fmt.Errorf("%w: unsupported version %q (expected %q)", ErrValidation, doc.Version, supportedVersion)
	}

	seen := make(map[string]bool, len(doc.Policies))
	for i, p := range doc.Policies {
		if err := validatePolicy(i, p); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: policies[%d]: duplicate policy name %q", ErrValidation, i, p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

func validatePolicy(index int, p Policy) error {
	path := fmt.Sprintf("policies[%d]", index)

	if p.Name == "" {
		return fmt.Errorf("%w: %s: name is required", ErrValidation, path)
	}
	if p.Credential == "" {
		return fmt.Errorf("%w: %s (%s): credential is required", ErrValidation, path, p.Name)
	}
	if !p.GrantTo.AgentID.Set && !p.GrantTo.SkillID.Set {
		return fmt.Errorf("%w: %s (%s): grant_to is required", ErrValidation, path, p.Name)
	}

	if p.Budget != nil {
		if p.Budget.MaxPerTransaction != nil && *p.Budget.MaxPerTransaction <= 0 {
			return fmt.Errorf("%w: %s (%s): budget.max_per_transaction must be positive", ErrValidation, path, p.Name)
		}
		if p.Budget.MaxPerMonth != nil && *p.Budget.MaxPerMonth <= 0 {
			return fmt.Errorf("%w: %s (%s): budget.max_per_month must be positive", ErrValidation, path, p.Name)
		}
	}

	if p.ApprovalThreshold != nil && *p.ApprovalThreshold <= 0 {
		return fmt.Errorf("%w: %s (%s): approval_threshold must be positive", ErrValidation, path, p.Name)
	}

	// Only a negative ttl is rejected: an explicit ttl of 0 decodes the
	// same as an absent one and is accepted, and EffectiveTTL then uses
	// DefaultTTL.
	if p.TTL < 0 {
		return fmt.Errorf("%w: %s (%s): ttl must be a positive integer", ErrValidation, path, p.Name)
	}

	return nil
}
