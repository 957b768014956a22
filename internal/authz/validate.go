package authz

import "fmt"

// validateRequest checks the fields every evaluation depends on
// regardless of which policy it runs against: a request naming no
// credential or no agent can never be evaluated meaningfully.
func validateRequest(req Request) error {
	if req.CredentialName == "" {
		return fmt.Errorf("%w: credential_name is required", ErrValidation)
	}
	if req.AgentID == "" {
		return fmt.Errorf("%w: agent_id is required", ErrValidation)
	}
	return nil
}
