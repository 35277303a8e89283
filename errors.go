package cashbook

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount reports amount text that is not a finite, non-negative decimal.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidType reports a transaction type outside Income, Expense and Pending.
	ErrInvalidType = errors.New("invalid transaction type")
	// ErrNotFound reports an operation on a transaction id absent from the ledger.
	ErrNotFound = errors.New("transaction not found")
	// ErrCorruptRecord reports persisted data failing schema validation.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrUnsupportedVersion reports a persisted document written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported ledger version")
	// ErrAlreadyLoaded reports a second Load on the same ledger.
	ErrAlreadyLoaded = errors.New("ledger already loaded")
	// ErrNotLoaded reports a mutation of a store-backed ledger before Load.
	ErrNotLoaded = errors.New("ledger not loaded")
)

// RecordError locates a schema violation in a persisted document.
type RecordError struct {
	Index int    // Index of the record in the persisted list, -1 for the document itself.
	Field string // Field at fault, empty when the record as a whole is malformed.
	Err   error
}

func (e *RecordError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("%v: document: %v", ErrCorruptRecord, e.Err)
	case e.Field == "":
		return fmt.Sprintf("%v: record %d: %v", ErrCorruptRecord, e.Index, e.Err)
	default:
		return fmt.Sprintf("%v: record %d: field %q: %v", ErrCorruptRecord, e.Index, e.Field, e.Err)
	}
}

// Unwrap makes errors.Is(err, ErrCorruptRecord) hold for every RecordError.
func (e *RecordError) Unwrap() []error { return []error{ErrCorruptRecord, e.Err} }
