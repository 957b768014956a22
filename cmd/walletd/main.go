package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dagbolade/checkout-wallet/internal/audit"
	"github.com/dagbolade/checkout-wallet/internal/token"
	"github.com/dagbolade/checkout-wallet/internal/vault"
	"github.com/dagbolade/checkout-wallet/internal/wallet"
)

func main() {
	setupLogger()

	log.Info().Msg("starting checkout-wallet daemon")

	ctx, cancel := setupSignalHandler()
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}

	log.Info().Msg("walletd stopped successfully")
}

func run(ctx context.Context) error {
	cfg := LoadConfig()

	v, err := initVault(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := v.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close vault")
		}
	}()

	auditStore, err := audit.NewSQLiteStore(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("initializing audit store: %w", err)
	}
	defer func() {
		if err := auditStore.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close audit store")
		}
	}()

	provider, err := wallet.NewReloadingPolicyProvider(cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("loading policy document: %w", err)
	}

	policyWatcher, err := NewPolicyWatcher(cfg.PolicyPath, provider)
	if err != nil {
		return fmt.Errorf("starting policy watcher: %w", err)
	}
	defer func() {
		if err := policyWatcher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close policy watcher")
		}
	}()

	pipeline := wallet.New(v, provider, auditStore, token.New())

	srv := NewServer(cfg, pipeline)
	return runServer(ctx, srv)
}

func initVault(cfg Config) (*vault.Vault, error) {
	v, err := vault.Open(cfg.WalletDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}

	passphrase := os.Getenv("WALLET_PASSPHRASE")
	if passphrase == "" {
		v.Close()
		return nil, fmt.Errorf("WALLET_PASSPHRASE must be set")
	}

	if err := v.Unlock(passphrase); err != nil {
		if errors.Is(err, vault.ErrNotInitialized) {
			if initErr := v.Initialize(passphrase); initErr != nil {
				v.Close()
				return nil, fmt.Errorf("initializing vault: %w", initErr)
			}
			return v, nil
		}
		v.Close()
		return nil, fmt.Errorf("unlocking vault: %w", err)
	}

	return v, nil
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	return ctx, cancel
}

func runServer(ctx context.Context, srv *Server) error {
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
