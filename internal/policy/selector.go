package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Wildcard matches any value for a Selector.
const Wildcard = "*"

// Selector is a grant_to scope field: a literal, a list of literals,
// or the wildcard "*". The zero value (Set == false) means the field
// was absent from the document, which the engine treats as "no
// restriction", distinct from an explicit wildcard, though both
// currently behave the same way.
type Selector struct {
	Set    bool
	Values []string
}

// IsWildcard reports whether the selector is the literal "*".
func (s Selector) IsWildcard() bool {
	return s.Set && len(s.Values) == 1 && s.Values[0] == Wildcard
}

// Matches reports whether value satisfies the selector: unset and
// wildcard selectors match everything, otherwise value must appear in
// Values.
func (s Selector) Matches(value string) bool {
	if !s.Set || s.IsWildcard() {
		return true
	}
	for _, candidate := range s.Values {
		if candidate == value {
			return true
		}
	}
	return false
}

// MarshalYAML renders an unset selector as absent, a single value as
// a bare scalar, and multiple values as a sequence, the mirror image
// of UnmarshalYAML, so Serialize output parses back through
// LoadFromText unchanged.
func (s Selector) MarshalYAML() (interface{}, error) {
	if !s.Set {
		return nil, nil
	}
	if len(s.Values) == 1 {
		return s.Values[0], nil
	}
	return s.Values, nil
}

// UnmarshalYAML accepts a bare scalar ("*", "agent-1") or a sequence
// of scalars ([agent-1, agent-2]).
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return fmt.Errorf("policy: decoding grant_to selector: %w", err)
		}
		s.Set = true
		s.Values = []string{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("policy: decoding grant_to selector list: %w", err)
		}
		s.Set = true
		s.Values = list
		return nil
	default:
		return fmt.Errorf("policy: grant_to selector must be a string or a list of strings")
	}
}
