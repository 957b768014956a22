package policy

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// supportedVersion is the only policy document version this loader
// accepts. Bumping it is a breaking format change.
const supportedVersion = "1"

// LoadFromText parses a YAML policy document, rejecting unknown
// top-level or per-policy fields and running the structural
// validation of spec §4.3.
func LoadFromText(text []byte) (*Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(text))
	decoder.KnownFields(true)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parsing policy document: %v", ErrValidation, err)
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// LoadFromValue accepts an already-decoded value (for example, a
// map[string]any produced by an upstream JSON transport) and runs it
// through the same validation path as LoadFromText by re-encoding it
// as YAML first. This keeps LoadFromText the single source of truth
// for "what is a valid policy document."
func LoadFromValue(value any) (*Document, error) {
	encoded, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding policy value: %v", ErrValidation, err)
	}
	return LoadFromText(encoded)
}

// Serialize renders a Document back to YAML text. Round-tripping
// LoadFromText(Serialize(doc)) must reproduce the same policies in
// the same order.
func Serialize(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
