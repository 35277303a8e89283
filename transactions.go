package cashbook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the closed set of transaction kinds recorded in a ledger.
type Type string

// Transaction types.
const (
	Income  Type = "Income"  // Income adds its amount to the balance.
	Expense Type = "Expense" // Expense subtracts its amount from the balance.
	Pending Type = "Pending" // Pending is recorded but never counted in the balance.
)

// Types lists every valid Type in display order.
var Types = []Type{Income, Expense, Pending}

func (t Type) String() string { return string(t) }

// Valid reports whether t is one of Income, Expense or Pending.
func (t Type) Valid() bool {
	switch t {
	case Income, Expense, Pending:
		return true
	}
	return false
}

// ParseType parses a user supplied type name. It is case-insensitive.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q, want one of income, expense, pending", ErrInvalidType, s)
}

// UnmarshalJSON is strict: persisted types must match exactly.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Type(s).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	*t = Type(s)
	return nil
}

// ParseAmount parses amount text into a non-negative decimal magnitude.
//
// Surrounding spaces are ignored. Anything else that is not a plain finite
// decimal number, or that is negative, is rejected with ErrInvalidAmount.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, text)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative, the sign comes from the type", ErrInvalidAmount, text)
	}
	return d, nil
}

// Transaction is one ledger event. Values are never modified in place, an
// edit replaces the whole value.
type Transaction struct {
	ID          string          // ID is opaque and unique within a ledger.
	Date        time.Time       // Date is chosen by the user.
	Type        Type            // Type gives the sign of Amount.
	Description string          // Description is a free text label.
	Amount      decimal.Decimal // Amount is a non-negative magnitude.
}

// NewTransaction validates the amount text and builds a transaction.
func NewTransaction(id string, date time.Time, typ Type, description, amountText string) (Transaction, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return Transaction{}, err
	}
	if !typ.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	return Transaction{
		ID:          id,
		Date:        date.Round(0),
		Type:        typ,
		Description: description,
		Amount:      amount,
	}, nil
}

// Signed returns the contribution of t to the balance.
func (t Transaction) Signed() decimal.Decimal {
	switch t.Type {
	case Income:
		return t.Amount
	case Expense:
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}

// Equal compares every field, dates as instants and amounts numerically.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Date.Equal(o.Date) &&
		t.Type == o.Type &&
		t.Description == o.Description &&
		t.Amount.Equal(o.Amount)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %q %s", t.ID, t.Date.Format(time.DateOnly), t.Type, t.Description, t.Amount.StringFixed(2))
}
