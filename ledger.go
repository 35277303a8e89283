package cashbook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pagination defaults of the visible window.
const (
	DefaultWindow   = 15 // DefaultWindow is the number of transactions visible at start.
	WindowIncrement = 10 // WindowIncrement is added to the window by ShowMore.
)

// Persister loads and saves full snapshots of a ledger. Store implements it.
type Persister interface {
	Load(ctx context.Context) ([]Transaction, error)
	Save(ctx context.Context, txs []Transaction) error
}

// Quarantiner is implemented by persisters able to set corrupt data aside
// before it gets overwritten.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

// ChangeKind tells what happened to a ledger.
type ChangeKind int

const (
	Loaded ChangeKind = iota
	Added
	Updated
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Loaded:
		return "loaded"
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is sent to subscribers after every structural change of a ledger.
type Change struct {
	Kind        ChangeKind
	Transaction Transaction // zero for Loaded
	Balance     decimal.Decimal
}

// Ledger is the ordered list of transactions, newest first, with the balance
// derived from it.
//
// The balance is recomputed from scratch after each mutation. A Ledger is
// meant for a single writer and is not safe for concurrent use.
type Ledger struct {
	transactions []Transaction
	balance      decimal.Decimal
	visible      int
	loaded       bool

	store  Persister
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Change)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore saves every mutation to p, and makes Load read from it.
func WithStore(p Persister) Option { return func(l *Ledger) { l.store = p } }

// WithLogger sets the logger, the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock sets the clock used for transactions added without a date.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithIDs sets the generator of transaction ids.
func WithIDs(newID func() string) Option { return func(l *Ledger) { l.newID = newID } }

// WithWindow sets the initial size of the visible window. Non-positive sizes are ignored.
func WithWindow(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.visible = n
		}
	}
}

// NewLedger creates an empty, unloaded ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		transactions: make([]Transaction, 0),
		balance:      decimal.Zero,
		visible:      DefaultWindow,
		logger:       zap.NewNop(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a ledger saved to p and loads it.
//
// When the persisted data is corrupt, Open still returns a usable empty
// ledger together with an error matching ErrCorruptRecord.
func Open(ctx context.Context, p Persister, opts ...Option) (*Ledger, error) {
	l := NewLedger(append(opts, WithStore(p))...)
	if err := l.Load(ctx); err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			return l, err
		}
		return nil, err
	}
	return l, nil
}

// Load populates the ledger from its store. It can only be called once, and
// a ledger with a store refuses mutations until it is loaded.
//
// A missing slot is an empty ledger. Corrupt data is quarantined when the
// store supports it, and the slot is reset to an empty ledger. The ledger
// then starts empty and Load returns the corruption error so that the
// caller can decide to go on or stop.
func (l *Ledger) Load(ctx context.Context) error {
	if l.loaded {
		return ErrAlreadyLoaded
	}

	var txs []Transaction
	var corrupt error
	if l.store != nil {
		var err error
		txs, err = l.store.Load(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrCorruptRecord):
			fields := []zap.Field{zap.Error(err)}
			if q, ok := l.store.(Quarantiner); ok {
				backup, qerr := q.Quarantine(ctx)
				if qerr != nil {
					return fmt.Errorf("could not set corrupt ledger aside: %w", errors.Join(err, qerr))
				}
				// The slot now holds an empty ledger, next loads do not copy it again.
				if serr := l.store.Save(ctx, []Transaction{}); serr != nil {
					return fmt.Errorf("could not reset corrupt ledger: %w", errors.Join(err, serr))
				}
				fields = append(fields, zap.String("backup", backup))
			}
			l.logger.Warn("corrupt ledger, starting with an empty one", fields...)
			txs, corrupt = nil, err
		default:
			return fmt.Errorf("could not load ledger: %w", err)
		}
	}

	l.transactions = append(make([]Transaction, 0, len(txs)), txs...)
	l.loaded = true
	l.RecomputeBalance()
	l.logger.Debug("ledger loaded", zap.Int("transactions", len(l.transactions)), zap.Stringer("balance", l.balance))
	l.notify(Change{Kind: Loaded, Balance: l.balance})
	return corrupt
}

// Add records a new transaction at the top of the ledger.
//
// The amount text is validated first, on failure the ledger is left
// untouched and the error matches ErrInvalidAmount. A zero date means now.
// When saving fails the transaction stays recorded in memory and the save
// error is returned with it.
func (l *Ledger) Add(ctx context.Context, date time.Time, typ Type, description, amountText string) (Transaction, error) {
	if err := l.writable(); err != nil {
		return Transaction{}, err
	}
	if date.IsZero() {
		date = l.now()
	}
	tx, err := NewTransaction(l.newID(), date, typ, description, amountText)
	if err != nil {
		return Transaction{}, err
	}

	l.transactions = slices.Insert(l.transactions, 0, tx)
	l.RecomputeBalance()
	l.logger.Debug("transaction added", zap.Stringer("transaction", tx), zap.Stringer("balance", l.balance))
	l.notify(Change{Kind: Added, Transaction: tx, Balance: l.balance})
	return tx, l.save(ctx)
}

// Update replaces the transaction id in place, keeping its id and position.
//
// ErrInvalidAmount is checked before ErrNotFound. A zero date keeps the
// previous date.
func (l *Ledger) Update(ctx context.Context, id string, date time.Time, typ Type, description, amountText string) (Transaction, error) {
	if err := l.writable(); err != nil {
		return Transaction{}, err
	}
	if _, err := ParseAmount(amountText); err != nil {
		return Transaction{}, err
	}
	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if date.IsZero() {
		date = l.transactions[i].Date
	}
	tx, err := NewTransaction(id, date, typ, description, amountText)
	if err != nil {
		return Transaction{}, err
	}

	l.transactions[i] = tx
	l.RecomputeBalance()
	l.logger.Debug("transaction updated", zap.Stringer("transaction", tx), zap.Stringer("balance", l.balance))
	l.notify(Change{Kind: Updated, Transaction: tx, Balance: l.balance})
	return tx, l.save(ctx)
}

// Remove deletes the transaction id and returns it.
func (l *Ledger) Remove(ctx context.Context, id string) (Transaction, error) {
	if err := l.writable(); err != nil {
		return Transaction{}, err
	}
	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	tx := l.transactions[i]

	l.transactions = slices.Delete(l.transactions, i, i+1)
	l.RecomputeBalance()
	l.logger.Debug("transaction removed", zap.Stringer("transaction", tx), zap.Stringer("balance", l.balance))
	l.notify(Change{Kind: Removed, Transaction: tx, Balance: l.balance})
	return tx, l.save(ctx)
}

// RecomputeBalance folds all transactions into the balance, stores and returns it.
func (l *Ledger) RecomputeBalance() decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range l.transactions {
		balance = balance.Add(tx.Signed())
	}
	l.balance = balance
	return balance
}

// Balance returns the balance computed after the last change.
func (l *Ledger) Balance() decimal.Decimal { return l.balance }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transaction returns the transaction with this id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	if i := l.index(id); i >= 0 {
		return l.transactions[i], true
	}
	return Transaction{}, false
}

// Transactions returns an iterator over transactions, newest first.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Snapshot returns a copy of all transactions, newest first.
func (l *Ledger) Snapshot() []Transaction { return slices.Clone(l.transactions) }

// VisibleCount returns the pagination cursor. It can exceed Len.
func (l *Ledger) VisibleCount() int { return l.visible }

// ExpandVisible grows the visible window by k. Non-positive k is a no-op.
func (l *Ledger) ExpandVisible(k int) {
	if k > 0 {
		l.visible += k
	}
}

// ShowMore grows the visible window by WindowIncrement.
func (l *Ledger) ShowMore() { l.ExpandVisible(WindowIncrement) }

// Visible returns the most recent transactions inside the window.
func (l *Ledger) Visible() []Transaction {
	return slices.Clone(l.transactions[:min(l.visible, len(l.transactions))])
}

// HasMore reports whether some transactions are outside the window.
func (l *Ledger) HasMore() bool { return l.visible < len(l.transactions) }

// Subscribe registers fn to be called synchronously after every change.
// The returned function cancels the subscription.
func (l *Ledger) Subscribe(fn func(Change)) (cancel func()) {
	id := l.nextID
	l.nextID++
	l.listeners = append(l.listeners, listener{id: id, fn: fn})
	return func() {
		l.listeners = slices.DeleteFunc(l.listeners, func(s listener) bool { return s.id == id })
	}
}

func (l *Ledger) notify(c Change) {
	for _, s := range slices.Clone(l.listeners) {
		s.fn(c)
	}
}

// writable refuses to mutate a store-backed ledger before Load, the first
// save would overwrite the persisted slot with a partial list.
func (l *Ledger) writable() error {
	if l.store != nil && !l.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.transactions, func(tx Transaction) bool { return tx.ID == id })
}

// save writes the full ledger, it is a total replace of the persisted slot.
func (l *Ledger) save(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.Save(ctx, l.Snapshot()); err != nil {
		l.logger.Error("could not save ledger", zap.Error(err))
		return fmt.Errorf("could not save ledger: %w", err)
	}
	return nil
}
