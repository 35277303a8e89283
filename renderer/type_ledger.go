package renderer

import (
	"strings"
	"time"

	"github.com/etnz/cashbook"
)

// DateFormat is how transaction dates are displayed.
const DateFormat = "2006-01-02"

// LedgerView is the data rendered by RenderLedger.
type LedgerView struct {
	Balance string
	Rows    []Row
	Shown   int  // number of rows
	Total   int  // number of transactions in the ledger
	More    bool // some transactions are outside the window
}

// Row is a transaction formatted for a table.
type Row struct {
	ID          string
	ShortID     string
	Date        string
	Type        string
	Description string
	Amount      string
}

// TransactionView is the data rendered by RenderTransaction.
type TransactionView struct {
	ID          string
	Date        string
	Type        string
	Description string
	Amount      string
}

// NewLedgerView formats the visible window of l with amounts in currency.
func NewLedgerView(l *cashbook.Ledger, currency string) *LedgerView {
	visible := l.Visible()
	v := &LedgerView{
		Balance: cashbook.M(l.Balance(), currency).String(),
		Rows:    make([]Row, 0, len(visible)),
		Shown:   len(visible),
		Total:   l.Len(),
		More:    l.HasMore(),
	}
	for _, tx := range visible {
		v.Rows = append(v.Rows, Row{
			ID:          tx.ID,
			ShortID:     ShortID(tx.ID),
			Date:        tx.Date.Local().Format(DateFormat),
			Type:        tx.Type.String(),
			Description: cell(tx.Description),
			Amount:      Amount(tx, currency),
		})
	}
	return v
}

// NewTransactionView formats tx with its amount in currency.
func NewTransactionView(tx cashbook.Transaction, currency string) *TransactionView {
	return &TransactionView{
		ID:          tx.ID,
		Date:        tx.Date.Local().Format(time.DateTime),
		Type:        tx.Type.String(),
		Description: cell(tx.Description),
		Amount:      Amount(tx, currency),
	}
}

// Ledger renders the balance and the visible window of l.
func Ledger(l *cashbook.Ledger, currency string) string {
	return RenderLedger(NewLedgerView(l, currency))
}

// Transaction renders a single transaction.
func Transaction(tx cashbook.Transaction, currency string) string {
	return RenderTransaction(NewTransactionView(tx, currency))
}

// Amount formats the amount of tx with its sign: "+$100.00" for income,
// "-$30.00" for expense and "($1,000.00)" for pending.
func Amount(tx cashbook.Transaction, currency string) string {
	m := cashbook.M(tx.Amount, currency)
	switch tx.Type {
	case cashbook.Income:
		return "+" + m.String()
	case cashbook.Expense:
		return "-" + m.String()
	default:
		return "(" + m.String() + ")"
	}
}

// ShortID returns the first 8 characters of id, enough to address it on the command line.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
