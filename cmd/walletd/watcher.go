package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/dagbolade/checkout-wallet/internal/wallet"
)

// PolicyWatcher reloads a ReloadingPolicyProvider whenever its backing
// file changes on disk, debounced to absorb editors that write in
// several small operations.
type PolicyWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	provider *wallet.ReloadingPolicyProvider
	done     chan struct{}
}

func NewPolicyWatcher(path string, provider *wallet.ReloadingPolicyProvider) (*PolicyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create policy watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch policy directory: %w", err)
	}

	pw := &PolicyWatcher{
		watcher:  watcher,
		path:     path,
		provider: provider,
		done:     make(chan struct{}),
	}

	go pw.watch()

	return pw, nil
}

func (pw *PolicyWatcher) Close() error {
	close(pw.done)
	return pw.watcher.Close()
}

// watch is the single long-lived loop owning the debounce timer: every
// qualifying event resets the same timer instead of spawning a
// goroutine per event, so a burst of edits reloads once instead of
// leaking a goroutine per edit.
func (pw *PolicyWatcher) watch() {
	debounce := time.NewTimer(0)
	<-debounce.C

	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if pw.shouldHandle(event) {
				debounce.Reset(300 * time.Millisecond)
			}

		case <-debounce.C:
			pw.reload()

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("policy watcher error")

		case <-pw.done:
			return
		}
	}
}

func (pw *PolicyWatcher) shouldHandle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(pw.path)
}

func (pw *PolicyWatcher) reload() {
	if err := pw.provider.Reload(); err != nil {
		log.Error().Err(err).Msg("policy reload failed")
		return
	}
	log.Info().Str("path", pw.path).Msg("policy document reloaded")
}
