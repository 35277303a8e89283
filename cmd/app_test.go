package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/etnz/cashbook"
	"github.com/etnz/cashbook/kv"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// useTempStore points the global flags to a file store in a temp dir and
// returns that dir.
func useTempStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn, cur, plain := "file:"+dir, "USD", true

	oldStore, oldCurrency, oldRaw, oldNow := storeDSN, currency, raw, now
	storeDSN, currency, raw = &dsn, &cur, &plain
	now = func() time.Time { return time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { storeDSN, currency, raw, now = oldStore, oldCurrency, oldRaw, oldNow })
	return dir
}

// run parses args with the command flags and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%q) failed: %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

// load reads back the ledger saved in dir.
func load(t *testing.T, dir string) *cashbook.Ledger {
	t.Helper()
	l, err := cashbook.Open(context.Background(), cashbook.NewStore(kv.NewFile(dir)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return l
}

func TestAddCmd(t *testing.T) {
	dir := useTempStore(t)

	if status := run(t, &addCmd{}, "-t", "income", "-a", "100", "Salary", "August"); status != subcommands.ExitSuccess {
		t.Fatalf("add income: expected ExitSuccess, got %v", status)
	}
	if status := run(t, &addCmd{}, "-t", "Expense", "-a", "30", "-d", "2025-08-10", "-m", "Groceries"); status != subcommands.ExitSuccess {
		t.Fatalf("add expense: expected ExitSuccess, got %v", status)
	}

	l := load(t, dir)
	if got, want := l.Balance(), decimal.NewFromInt(70); !got.Equal(want) {
		t.Errorf("Balance() = %s, want %s", got, want)
	}
	txs := l.Snapshot()
	if len(txs) != 2 {
		t.Fatalf("len(Snapshot()) = %d, want 2", len(txs))
	}
	if txs[0].Description != "Groceries" || txs[1].Description != "Salary August" {
		t.Errorf("descriptions = %q, %q, want newest first", txs[0].Description, txs[1].Description)
	}
	if want := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC); !txs[0].Date.Equal(want) {
		t.Errorf("Date = %v, want %v", txs[0].Date, want)
	}
	if want := now(); !txs[1].Date.Equal(want) {
		t.Errorf("default Date = %v, want %v", txs[1].Date, want)
	}
}

func TestAddCmd_Invalid(t *testing.T) {
	dir := useTempStore(t)

	tests := []struct {
		name string
		args []string
	}{
		{"amount", []string{"-t", "income", "-a", "abc", "Salary"}},
		{"negative amount", []string{"-t", "income", "-a", "-5", "Salary"}},
		{"missing amount", []string{"-t", "income", "Salary"}},
		{"type", []string{"-t", "refund", "-a", "5", "Salary"}},
		{"date", []string{"-t", "income", "-a", "5", "-d", "tomorrow", "Salary"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if status := run(t, &addCmd{}, tc.args...); status != subcommands.ExitUsageError {
				t.Errorf("expected ExitUsageError, got %v", status)
			}
		})
	}

	if _, err := kv.NewFile(dir).Get(context.Background(), cashbook.DefaultKey); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("rejected additions must not write the store, Get() error = %v", err)
	}
}

func TestEditCmd(t *testing.T) {
	dir := useTempStore(t)
	run(t, &addCmd{}, "-t", "income", "-a", "100", "Salary")
	run(t, &addCmd{}, "-t", "expense", "-a", "30", "Groceries")

	l := load(t, dir)
	groceries := l.Snapshot()[0]

	if status := run(t, &editCmd{}, "-a", "45.50", groceries.ID[:8]); status != subcommands.ExitSuccess {
		t.Fatalf("expected ExitSuccess, got %v", status)
	}

	l = load(t, dir)
	got, ok := l.Transaction(groceries.ID)
	if !ok {
		t.Fatalf("Transaction(%q) not found after edit", groceries.ID)
	}
	if !got.Amount.Equal(decimal.RequireFromString("45.50")) {
		t.Errorf("Amount = %s, want 45.50", got.Amount)
	}
	if got.Description != "Groceries" || got.Type != cashbook.Expense || !got.Date.Equal(groceries.Date) {
		t.Errorf("unset fields changed: %v", got)
	}
	if l.Snapshot()[0].ID != groceries.ID {
		t.Errorf("edited transaction moved")
	}
	if want := decimal.RequireFromString("54.50"); !l.Balance().Equal(want) {
		t.Errorf("Balance() = %s, want %s", l.Balance(), want)
	}
}

func TestEditCmd_Errors(t *testing.T) {
	useTempStore(t)
	run(t, &addCmd{}, "-t", "income", "-a", "100", "Salary")

	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"no id", []string{"-a", "5"}, subcommands.ExitUsageError},
		{"no change", []string{"abc"}, subcommands.ExitUsageError},
		{"unknown id", []string{"-a", "5", "does-not-exist"}, subcommands.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if status := run(t, &editCmd{}, tc.args...); status != tc.want {
				t.Errorf("expected %v, got %v", tc.want, status)
			}
		})
	}
}

func TestRemoveCmd(t *testing.T) {
	dir := useTempStore(t)
	run(t, &addCmd{}, "-t", "income", "-a", "100", "Salary")
	run(t, &addCmd{}, "-t", "expense", "-a", "30", "Groceries")
	groceries := load(t, dir).Snapshot()[0]

	if status := run(t, &removeCmd{}, groceries.ID); status != subcommands.ExitSuccess {
		t.Fatalf("expected ExitSuccess, got %v", status)
	}
	l := load(t, dir)
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
	if !l.Balance().Equal(decimal.NewFromInt(100)) {
		t.Errorf("Balance() = %s, want 100", l.Balance())
	}

	if status := run(t, &removeCmd{}, groceries.ID); status != subcommands.ExitFailure {
		t.Errorf("removing twice: expected ExitFailure, got %v", status)
	}
}

func TestReportCmds(t *testing.T) {
	dir := useTempStore(t)
	for range 20 {
		run(t, &addCmd{}, "-t", "pending", "-a", "1", "Maybe")
	}
	id := load(t, dir).Snapshot()[0].ID

	tests := []struct {
		name string
		cmd  subcommands.Command
		args []string
	}{
		{"list", &listCmd{}, nil},
		{"list more", &listCmd{}, []string{"-n", "5", "-more", "1"}},
		{"list all", &listCmd{}, []string{"-all"}},
		{"show", &showCmd{}, []string{id}},
		{"balance", &balanceCmd{}, nil},
		{"balance signed", &balanceCmd{}, []string{"-signed"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if status := run(t, tc.cmd, tc.args...); status != subcommands.ExitSuccess {
				t.Errorf("expected ExitSuccess, got %v", status)
			}
		})
	}

	if status := run(t, &listCmd{}, "-n", "0"); status != subcommands.ExitUsageError {
		t.Errorf("list -n 0: expected ExitUsageError, got %v", status)
	}
}

func TestOpenLedger_Corrupt(t *testing.T) {
	dir := useTempStore(t)
	if err := kv.NewFile(dir).Put(context.Background(), cashbook.DefaultKey, []byte(`{"version":1,"transactions":[{"type":"Refund"}]}`)); err != nil {
		t.Fatal(err)
	}

	l, release, err := openLedger(context.Background())
	if err != nil {
		t.Fatalf("openLedger() failed: %v", err)
	}
	defer release()
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want an empty ledger", l.Len())
	}
}

func TestResolveID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"aaaa1111", "aaaa2222", "bbbb0000"}
	i := 0
	l := cashbook.NewLedger(cashbook.WithIDs(func() string { i++; return ids[i-1] }))
	for range ids {
		if _, err := l.Add(ctx, time.Time{}, cashbook.Income, "x", "1"); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"aaaa1111", "aaaa1111", false},
		{"bb", "bbbb0000", false},
		{"aaaa2", "aaaa2222", false},
		{"aaaa", "", true},
		{"c", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := resolveID(l, tc.prefix)
		if (err != nil) != tc.wantErr {
			t.Errorf("resolveID(%q) error = %v, wantErr %v", tc.prefix, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("resolveID(%q) = %q, want %q", tc.prefix, got, tc.want)
		}
	}
	if _, err := resolveID(l, "c"); !errors.Is(err, cashbook.ErrNotFound) {
		t.Errorf("resolveID(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestFlagOrEnv(t *testing.T) {
	t.Setenv(EnvCurrency, "EUR")
	if got := flagOrEnv("GBP", EnvCurrency, "USD"); got != "GBP" {
		t.Errorf("flag value: got %q, want GBP", got)
	}
	if got := flagOrEnv("", EnvCurrency, "USD"); got != "EUR" {
		t.Errorf("env value: got %q, want EUR", got)
	}
	t.Setenv(EnvCurrency, "")
	if got := flagOrEnv("", EnvCurrency, "USD"); got != "USD" {
		t.Errorf("fallback: got %q, want USD", got)
	}
}

func TestNewLogger(t *testing.T) {
	t.Setenv(EnvVerbose, "")
	quiet := false
	oldVerbose := verbose
	verbose = &quiet
	defer func() { verbose = oldVerbose }()

	logger := NewLogger()
	if logger.Core().Enabled(zap.InfoLevel) || !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("default logger: want warn level")
	}

	t.Setenv(EnvVerbose, "true")
	if !NewLogger().Core().Enabled(zap.DebugLevel) {
		t.Errorf("%s=true: want debug level", EnvVerbose)
	}
}
