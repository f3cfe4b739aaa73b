// Package cmd implements the CLI application to manage a finbook ledger.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/store"
	"github.com/finbook/finbook/store/boltstore"
	"github.com/finbook/finbook/store/memstore"
	"github.com/finbook/finbook/store/pgstore"
)

// Register registers all subcommands on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&accountCmd{}, "accounts")
	c.Register(&accountsCmd{}, "accounts")

	c.Register(&addCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&editCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")
	c.Register(&exportCmd{}, "transactions")
	c.Register(&recurCmd{}, "transactions")

	c.Register(&budgetCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&classifyCmd{}, "reports")
	c.Register(&topicCmd{}, "help")
}

// CommandNames lists every registered verb, for shell completion.
func CommandNames() []string {
	return []string{
		"account", "accounts",
		"add", "transfer", "edit", "rm", "tx", "import", "export", "recur",
		"budget", "summary", "classify", "topic",
	}
}

// Config holds the CLI's environment configuration. Flags take precedence on
// the few commands that expose an equivalent flag.
type Config struct {
	// StorePath is the bolt database file.
	StorePath string `env:"FINBOOK_STORE" envDefault:"finbook.db"`
	// Backend selects the store: bolt, mem, or postgres.
	Backend string `env:"FINBOOK_BACKEND" envDefault:"bolt"`
	// DatabaseURL is the Postgres connection string for the postgres backend.
	DatabaseURL string `env:"FINBOOK_DATABASE_URL"`
	// Model is the Gemini model used by classify.
	Model string `env:"FINBOOK_GEMINI_MODEL"`
	// Verbose enables debug logging.
	Verbose bool `env:"FINBOOK_VERBOSE"`
}

// App bundles everything a command needs.
type App struct {
	Ledger      *finbook.Ledger
	Accounts    *finbook.AccountRegistry
	Frequencies *finbook.FrequencyRegistry
	Budgets     *finbook.BudgetRegistry
	Categories  *finbook.Categories
	KV          store.KV
	Config      Config
	Log         zerolog.Logger

	closer func() error
}

// Close releases the underlying store.
func (a *App) Close() {
	if a.closer != nil {
		if err := a.closer(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: closing store: %v\n", err)
		}
	}
}

// openApp loads configuration and opens the configured store.
func openApp(ctx context.Context) (*App, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)
	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	var (
		kv     store.KV
		closer func() error
	)
	switch cfg.Backend {
	case "mem":
		kv = memstore.New()
	case "bolt", "":
		s, err := boltstore.Open(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		kv, closer = s, s.Close
	case "postgres":
		s, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		kv, closer = s, func() error { s.Close(); return nil }
	default:
		return nil, fmt.Errorf("unknown backend %q (want bolt, mem, or postgres)", cfg.Backend)
	}

	accounts := finbook.NewAccountRegistry(kv)
	freqs := finbook.NewFrequencyRegistry(kv)
	if err := freqs.Seed(ctx); err != nil {
		return nil, err
	}

	return &App{
		Ledger:      finbook.NewLedger(kv, accounts, freqs, finbook.WithLogger(logger)),
		Accounts:    accounts,
		Frequencies: freqs,
		Budgets:     finbook.NewBudgetRegistry(kv),
		Categories:  finbook.NewCategories(kv),
		KV:          kv,
		Config:      cfg,
		Log:         logger,
		closer:      closer,
	}, nil
}

// fail prints the error and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// accountNames builds the id -> display name map used by listings.
func accountNames(ctx context.Context, app *App) map[string]string {
	names := make(map[string]string)
	accounts, err := app.Accounts.List(ctx)
	if err != nil {
		return names
	}
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names
}

// resolveAccount accepts an account id or a unique account name.
func resolveAccount(ctx context.Context, app *App, ref string) (finbook.Account, error) {
	if a, err := app.Accounts.Get(ctx, ref); err == nil {
		return a, nil
	}
	accounts, err := app.Accounts.List(ctx)
	if err != nil {
		return finbook.Account{}, err
	}
	var found []finbook.Account
	for _, a := range accounts {
		if a.Name == ref {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return finbook.Account{}, fmt.Errorf("no account %q", ref)
	case 1:
		return found[0], nil
	default:
		return finbook.Account{}, fmt.Errorf("account name %q is ambiguous, use the id", ref)
	}
}
