package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dagbolade/checkout-wallet/internal/audit"
	"github.com/dagbolade/checkout-wallet/internal/policy"
	"github.com/dagbolade/checkout-wallet/internal/vault"
)

func main() {
	setupLogger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "credential":
		err = runCredential(os.Args[2:])
	case "audit":
		err = runAudit(os.Args[2:])
	case "policy":
		err = runPolicy(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: wallet-cli <credential|audit|policy> <subcommand> [args]

  wallet-cli credential add <name> <kind> <value>
  wallet-cli credential list
  wallet-cli credential remove <name>
  wallet-cli audit query [--event=E] [--agent=A] [--limit=N]
  wallet-cli policy validate <path>`)
}

func runCredential(args []string) error {
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	v, err := openVault()
	if err != nil {
		return err
	}
	defer v.Close()

	switch args[0] {
	case "add":
		if len(args) != 4 {
			return fmt.Errorf("usage: wallet-cli credential add <name> <kind> <value>")
		}
		id, err := v.Add(args[1], vault.Kind(args[2]), []byte(args[3]), nil)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil

	case "list":
		summaries, err := v.List()
		if err != nil {
			return err
		}
		return printJSON(summaries)

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: wallet-cli credential remove <name>")
		}
		removed, err := v.Remove(args[1])
		if err != nil {
			return err
		}
		fmt.Println(removed)
		return nil

	default:
		return fmt.Errorf("unknown credential subcommand %q", args[0])
	}
}

func runAudit(args []string) error {
	if len(args) == 0 || args[0] != "query" {
		return fmt.Errorf("usage: wallet-cli audit query [--event=E] [--agent=A] [--limit=N]")
	}

	filters := audit.QueryFilters{}
	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "--event="):
			filters.Event = audit.Event(strings.TrimPrefix(arg, "--event="))
		case strings.HasPrefix(arg, "--agent="):
			filters.AgentID = strings.TrimPrefix(arg, "--agent=")
		case strings.HasPrefix(arg, "--policy="):
			filters.Policy = strings.TrimPrefix(arg, "--policy=")
		case strings.HasPrefix(arg, "--since="):
			filters.Since = strings.TrimPrefix(arg, "--since=")
		case strings.HasPrefix(arg, "--limit="):
			limit, err := strconv.Atoi(strings.TrimPrefix(arg, "--limit="))
			if err != nil {
				return fmt.Errorf("invalid --limit: %w", err)
			}
			filters.Limit = limit
		}
	}

	store, err := audit.NewSQLiteStore(getEnv("AUDIT_DB_PATH", "./db/audit.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Query(context.Background(), filters)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func runPolicy(args []string) error {
	if len(args) != 2 || args[0] != "validate" {
		return fmt.Errorf("usage: wallet-cli policy validate <path>")
	}

	text, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	doc, err := policy.LoadFromText(text)
	if err != nil {
		return err
	}

	fmt.Printf("valid: %d policies\n", len(doc.Policies))
	return nil
}

func openVault() (*vault.Vault, error) {
	v, err := vault.Open(getEnv("WALLET_DB_PATH", "./db/wallet.db"))
	if err != nil {
		return nil, err
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
				return nil, initErr
			}
			return v, nil
		}
		v.Close()
		return nil, err
	}

	return v, nil
}

func printJSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
