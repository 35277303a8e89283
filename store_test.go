package cashbook

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/cashbook/kv"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestStore_EmptySlot(t *testing.T) {
	l, err := Open(context.Background(), NewStore(kv.NewMemory()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if l.Len() != 0 || !l.Balance().IsZero() {
		t.Errorf("got %d transactions and balance %s, want an empty ledger", l.Len(), l.Balance())
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()

	l, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, l, Income, "Salary", "100")
	groceries := mustAdd(t, l, Expense, "Groceries", "30")
	mustAdd(t, l, Pending, "Bonus", "1000")
	if _, err := l.Update(ctx, groceries.ID, time.Time{}, Expense, "Groceries", "35.10"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if diff := cmp.Diff(l.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Errorf("reloaded ledger mismatch (-want +got):\n%s", diff)
	}
	if want := decimal.RequireFromString("64.9"); !reloaded.Balance().Equal(want) {
		t.Errorf("Balance() = %s, want %s", reloaded.Balance(), want)
	}
}

func TestStore_Key(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()
	s := NewStore(db, WithKey("household"))
	if s.Key() != "household" {
		t.Errorf("Key() = %q, want household", s.Key())
	}
	if err := s.Save(ctx, sampleTransactions()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"household"}, db.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := NewStore(kv.NewMemory()).Key(); got != DefaultKey {
		t.Errorf("default Key() = %q, want %q", got, DefaultKey)
	}
}

func TestStore_AssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()
	legacy := `[{"date":"2024-03-01T09:00:00Z","type":"Income","description":"Rent","amount":800},
{"date":"2024-03-02T09:00:00Z","type":"Expense","description":"Fees","amount":12}]`
	if err := db.Put(ctx, DefaultKey, []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	txs, err := NewStore(db).Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	if txs[0].ID == "" || txs[1].ID == "" || txs[0].ID == txs[1].ID {
		t.Errorf("ids = %q, %q, want distinct fresh ids", txs[0].ID, txs[1].ID)
	}

	// The slot was upgraded with the assigned ids.
	data, err := db.Get(ctx, DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	persisted, version, err := DecodeTransactions(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if version != FormatVersion {
		t.Errorf("version = %d, want %d", version, FormatVersion)
	}
	if diff := cmp.Diff(txs, persisted); diff != "" {
		t.Errorf("persisted slot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_StableAssignedIDs(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()
	legacy := `[{"date":"2024-03-01T09:00:00Z","type":"Expense","description":"Fees","amount":12}]`
	if err := db.Put(ctx, DefaultKey, []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	first, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatal(err)
	}
	id := first.Snapshot()[0].ID

	second, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatal(err)
	}
	if got := second.Snapshot()[0].ID; got != id {
		t.Fatalf("id changed between loads: %q then %q", id, got)
	}
	if _, err := second.Remove(ctx, id); err != nil {
		t.Fatalf("Remove(%q) failed: %v", id, err)
	}

	third, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatal(err)
	}
	if third.Len() != 0 {
		t.Errorf("Len() = %d after removal, want 0", third.Len())
	}
}

func TestStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()
	corrupt := []byte(`{"version":1,"transactions":[{"date":"2025-08-01T00:00:00Z","type":"Refund","description":"x","amount":1}]}`)
	if err := db.Put(ctx, DefaultKey, corrupt); err != nil {
		t.Fatal(err)
	}

	l, err := Open(ctx, NewStore(db))
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("Open() error = %v, want ErrCorruptRecord", err)
	}
	if l == nil || l.Len() != 0 {
		t.Fatal("Open() must return an empty ledger on corruption")
	}

	keys := db.Keys()
	if len(keys) != 2 || keys[0] != DefaultKey || !strings.HasPrefix(keys[1], DefaultKey+".corrupt.") {
		t.Fatalf("keys = %q, want the slot and its quarantined copy", keys)
	}
	backup, err := db.Get(ctx, keys[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != string(corrupt) {
		t.Errorf("quarantined copy = %s, want %s", backup, corrupt)
	}

	// The slot was reset, loading again copies nothing.
	again, err := Open(ctx, NewStore(db))
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	if again.Len() != 0 || len(db.Keys()) != 2 {
		t.Errorf("second Open(): %d transactions, keys = %q, want an empty ledger and 2 keys", again.Len(), db.Keys())
	}

	mustAdd(t, l, Income, "Salary", "100")
	if _, err := Open(ctx, NewStore(db)); err != nil {
		t.Errorf("Open() after save failed: %v", err)
	}
	if len(db.Keys()) != 2 {
		t.Errorf("keys = %q, want 2", db.Keys())
	}
}

func TestStore_UnsupportedVersion(t *testing.T) {
	ctx := context.Background()
	db := kv.NewMemory()
	if err := db.Put(ctx, DefaultKey, []byte(`{"version":99,"transactions":[]}`)); err != nil {
		t.Fatal(err)
	}
	l, err := Open(ctx, NewStore(db))
	if !errors.Is(err, ErrUnsupportedVersion) || l != nil {
		t.Errorf("Open() = %v, %v, want nil, ErrUnsupportedVersion", l, err)
	}
	if len(db.Keys()) != 1 {
		t.Errorf("a newer document must not be quarantined, keys = %q", db.Keys())
	}
}
