// Package cmd implements the CLI application to manage a cashbook.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cashbook"
	"github.com/etnz/cashbook/date"
	"github.com/etnz/cashbook/kv"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "transactions")
	c.Register(&editCmd{}, "transactions")
	c.Register(&removeCmd{}, "transactions")

	c.Register(&listCmd{}, "reports")
	c.Register(&showCmd{}, "reports")
	c.Register(&balanceCmd{}, "reports")
}

// Environment variables providing defaults for the global flags. They can be
// set in a .env file of the working directory.
const (
	EnvStore    = "CASHBOOK_STORE"
	EnvCurrency = "CASHBOOK_CURRENCY"
	EnvVerbose  = "CASHBOOK_VERBOSE"
)

// DefaultStore is the backend used when neither -store nor CASHBOOK_STORE is set.
const DefaultStore = "file:.cashbook"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeDSN = flag.String("store", "", "Key-value backend holding the ledger: mem:, file:<dir>, sqlite:<path>, redis://..., postgres://... (default $"+EnvStore+" or "+DefaultStore+")")
var currency = flag.String("currency", "", "ISO code of the currency used to display amounts (default $"+EnvCurrency+" or "+cashbook.DefaultCurrency+")")
var verbose = flag.Bool("v", false, "Log debug information to stderr (default $"+EnvVerbose+")")
var raw = flag.Bool("raw", false, "Print plain markdown instead of styling it for the terminal")

// now is the clock of the application.
var now = time.Now

func flagOrEnv(value, env, fallback string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func storeLocation() string { return flagOrEnv(*storeDSN, EnvStore, DefaultStore) }

func displayCurrency() string { return flagOrEnv(*currency, EnvCurrency, cashbook.DefaultCurrency) }

func isVerbose() bool {
	if *verbose {
		return true
	}
	v, _ := strconv.ParseBool(os.Getenv(EnvVerbose))
	return v
}

// NewLogger returns a console logger on stderr, at warn level unless verbose.
func NewLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !isVerbose() {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openLedger opens the configured backend and loads the ledger. The returned
// function releases the backend.
//
// Corrupt data is reported on stderr and the ledger starts empty, the corrupt
// document having been set aside by the store.
func openLedger(ctx context.Context, opts ...cashbook.Option) (*cashbook.Ledger, func(), error) {
	logger := NewLogger()
	dsn := storeLocation()
	db, err := kv.Open(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open store %q: %w", dsn, err)
	}
	release := func() {
		logger.Sync()
		db.Close()
	}

	store := cashbook.NewStore(db, cashbook.WithStoreLogger(logger))
	opts = append(opts, cashbook.WithLogger(logger), cashbook.WithClock(now))
	ledger, err := cashbook.Open(ctx, store, opts...)
	if errors.Is(err, cashbook.ErrCorruptRecord) {
		fmt.Fprintf(os.Stderr, "Warning: %v\nThe corrupt ledger was set aside, starting with an empty one.\n", err)
		err = nil
	}
	if err != nil {
		release()
		return nil, nil, err
	}
	return ledger, release, nil
}

// resolveID finds the transaction addressed by an id or a unique id prefix.
func resolveID(l *cashbook.Ledger, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("missing transaction id")
	}
	if _, ok := l.Transaction(prefix); ok {
		return prefix, nil
	}
	var matches []string
	for _, tx := range l.Transactions() {
		if strings.HasPrefix(tx.ID, prefix) {
			matches = append(matches, tx.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", cashbook.ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous, it matches %d transactions", prefix, len(matches))
	}
}

// parseDate parses a user date, the empty string meaning now.
func parseDate(s string) (time.Time, error) {
	return date.Parse(s, now())
}

// printMarkdown prints md styled for the terminal, or as is with -raw.
func printMarkdown(md string) {
	if *raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// exitStatus prints err and maps it to an exit status.
func exitStatus(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, cashbook.ErrInvalidAmount) || errors.Is(err, cashbook.ErrInvalidType) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
