package wallet

import "github.com/dagbolade/checkout-wallet/internal/policy"

// PolicyProvider decouples the pipeline from how the policy document
// is loaded and kept fresh. cmd/walletd swaps in a hot-reloading
// implementation backed by fsnotify; tests use a StaticPolicyProvider.
type PolicyProvider interface {
	Current() *policy.Document
}

// StaticPolicyProvider serves a single, never-reloaded document.
type StaticPolicyProvider struct {
	doc *policy.Document
}

func NewStaticPolicyProvider(doc *policy.Document) *StaticPolicyProvider {
	return &StaticPolicyProvider{doc: doc}
}

func (p *StaticPolicyProvider) Current() *policy.Document {
	return p.doc
}
