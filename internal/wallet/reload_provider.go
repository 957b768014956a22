package wallet

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dagbolade/checkout-wallet/internal/policy"
)

// ReloadingPolicyProvider serves the most recently loaded document
// from an atomic pointer, so a reader never observes a torn read
// while a writer swaps in a freshly edited file. cmd/walletd wires an
// fsnotify watcher to call Reload.
type ReloadingPolicyProvider struct {
	path string
	doc  atomic.Pointer[policy.Document]
}

// NewReloadingPolicyProvider loads path once up front; a load failure
// at construction time is fatal to the caller, matching the "policy
// file must be valid to start" posture.
func NewReloadingPolicyProvider(path string) (*ReloadingPolicyProvider, error) {
	p := &ReloadingPolicyProvider{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ReloadingPolicyProvider) Current() *policy.Document {
	return p.doc.Load()
}

// Reload re-reads and re-validates the policy file, swapping it in
// only if it parses cleanly. A bad edit on disk is logged and the
// previously loaded document keeps serving.
func (p *ReloadingPolicyProvider) Reload() error {
	text, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}

	doc, err := policy.LoadFromText(text)
	if err != nil {
		if p.doc.Load() != nil {
			log.Error().Err(err).Str("path", p.path).Msg("policy reload rejected, keeping previous document")
			return nil
		}
		return err
	}

	p.doc.Store(doc)
	return nil
}
