package policy

// Get returns the policy named name, or nil if none exists.
func (d *Document) Get(name string) *Policy {
	for i := range d.Policies {
		if d.Policies[i].Name == name {
			return &d.Policies[i]
		}
	}
	return nil
}

// List returns every policy in document order.
func (d *Document) List() []Policy {
	return d.Policies
}

// ListForAgent applies the conservative pre-filter of spec §4.3: it
// narrows the policies offered to an agent, but is not itself an
// authorization decision; the engine makes the binding one. Document
// order is preserved.
func (d *Document) ListForAgent(agentID string, skillID *string) []Policy {
	var candidates []Policy
	for _, p := range d.Policies {
		if containsString(p.Deny, agentID) {
			continue
		}
		if !p.GrantTo.AgentID.Matches(agentID) {
			continue
		}
		if skillID != nil && !p.GrantTo.SkillID.Matches(*skillID) {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
