package cashbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/cashbook/kv"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultKey is the slot holding the ledger in the key-value backend.
const DefaultKey = "transactions"

// Store persists a ledger as a single document in one slot of a key-value
// backend. Every save rewrites the whole slot.
type Store struct {
	db     kv.KV
	key    string
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey changes the slot name.
func WithKey(key string) StoreOption { return func(s *Store) { s.key = key } }

// WithStoreLogger sets the logger, the default discards everything.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a Store writing to db.
func NewStore(db kv.KV, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		key:    DefaultKey,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot name.
func (s *Store) Key() string { return s.key }

// Save overwrites the slot with txs.
func (s *Store) Save(ctx context.Context, txs []Transaction) error {
	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		return err
	}
	if err := s.db.Put(ctx, s.key, buf.Bytes()); err != nil {
		return fmt.Errorf("could not write slot %q: %w", s.key, err)
	}
	return nil
}

// Load reads the slot. An absent slot is an empty list, it is the normal
// state on first run.
//
// Records persisted without an id get a fresh one. The slot is then written
// back, as are legacy documents, so ids stay stable across loads.
func (s *Store) Load(ctx context.Context) ([]Transaction, error) {
	data, err := s.db.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.Info("no ledger yet, starting empty", zap.String("key", s.key))
		return []Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read slot %q: %w", s.key, err)
	}

	txs, version, err := DecodeTransactions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode slot %q: %w", s.key, err)
	}
	rewrite := version < FormatVersion
	if rewrite {
		s.logger.Info("legacy ledger format, upgrading", zap.Int("version", version))
	}
	for i := range txs {
		if txs[i].ID == "" {
			txs[i].ID = s.newID()
			rewrite = true
			s.logger.Warn("record without id", zap.Int("record", i), zap.String("id", txs[i].ID))
		}
	}
	// Assigned ids must survive this process.
	if rewrite {
		if err := s.Save(ctx, txs); err != nil {
			return nil, fmt.Errorf("could not upgrade slot %q: %w", s.key, err)
		}
	}
	return txs, nil
}

// Quarantine copies the raw slot to a sibling key and returns that key.
func (s *Store) Quarantine(ctx context.Context) (string, error) {
	data, err := s.db.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("could not read slot %q: %w", s.key, err)
	}
	backup := fmt.Sprintf("%s.corrupt.%d", s.key, s.now().UnixNano())
	if err := s.db.Put(ctx, backup, data); err != nil {
		return "", fmt.Errorf("could not write slot %q: %w", backup, err)
	}
	return backup, nil
}
