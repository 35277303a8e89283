package cashbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// FormatVersion is the version of the persisted document written by EncodeTransactions.
//
// Version 0 is the legacy layout: a bare JSON array of records with no
// envelope. It is still decoded.
const FormatVersion = 1

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON writes the persisted record of a transaction, keys in a fixed order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date.UTC().Format(time.RFC3339Nano))
	w.Append("type", t.Type)
	w.Append("description", t.Description)
	w.Append("amount", t.Amount)
	return w.MarshalJSON()
}

// EncodeTransactions writes the whole ordered list as a versioned document,
// one record per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"version":%d,"transactions":[`, FormatVersion)
	for i, tx := range txs {
		record, err := tx.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal transaction %s: %w", tx.ID, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		buf.Write(record)
	}
	if len(txs) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]}\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}
	return nil
}

// DecodeTransactions reads a document written by EncodeTransactions, or a
// legacy bare array, and validates every record.
//
// Records without an id are returned with an empty ID, the caller assigns one.
// Schema violations are reported as *RecordError, which matches
// ErrCorruptRecord. A document newer than FormatVersion reports
// ErrUnsupportedVersion.
func DecodeTransactions(r io.Reader) (txs []Transaction, version int, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading from input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, 0, &RecordError{Index: -1, Err: errors.New("empty document")}
	}

	var records []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, 0, &RecordError{Index: -1, Err: err}
		}
	case '{':
		records, version, err = decodeEnvelope(data)
		if err != nil {
			return nil, version, err
		}
	default:
		return nil, 0, &RecordError{Index: -1, Err: errors.New("not a JSON object or array")}
	}

	txs = make([]Transaction, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, raw := range records {
		tx, err := decodeRecord(i, raw)
		if err != nil {
			return nil, version, err
		}
		if tx.ID != "" {
			if j, dup := seen[tx.ID]; dup {
				return nil, version, &RecordError{Index: i, Field: "id", Err: fmt.Errorf("duplicate of record %d", j)}
			}
			seen[tx.ID] = i
		}
		txs = append(txs, tx)
	}
	return txs, version, nil
}

func decodeEnvelope(data []byte) ([]json.RawMessage, int, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, 0, &RecordError{Index: -1, Err: err}
	}

	rawVersion, ok := envelope["version"]
	if !ok {
		return nil, 0, &RecordError{Index: -1, Field: "version", Err: errors.New("missing")}
	}
	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil || version < 1 {
		return nil, 0, &RecordError{Index: -1, Field: "version", Err: fmt.Errorf("must be a positive integer, got %s", rawVersion)}
	}
	if version > FormatVersion {
		return nil, version, fmt.Errorf("%w: document version %d, this build reads up to %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	rawList, ok := envelope["transactions"]
	if !ok {
		return nil, version, &RecordError{Index: -1, Field: "transactions", Err: errors.New("missing")}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(rawList, &records); err != nil {
		return nil, version, &RecordError{Index: -1, Field: "transactions", Err: errors.New("must be an array")}
	}
	return records, version, nil
}

// decodeRecord validates a single record. The i-th index is for error reporting.
func decodeRecord(i int, data json.RawMessage) (Transaction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Transaction{}, &RecordError{Index: i, Err: errors.New("not a JSON object")}
	}
	fail := func(field, format string, args ...any) (Transaction, error) {
		return Transaction{}, &RecordError{Index: i, Field: field, Err: fmt.Errorf(format, args...)}
	}
	required := func(field string) (json.RawMessage, bool) {
		raw, ok := fields[field]
		return raw, ok && !isNull(raw)
	}

	var tx Transaction

	// The id is optional, an empty one is replaced by the caller.
	if raw, ok := required("id"); ok {
		if err := json.Unmarshal(raw, &tx.ID); err != nil {
			return fail("id", "must be a string, got %s", raw)
		}
	}

	raw, ok := required("date")
	if !ok {
		return fail("date", "missing")
	}
	date, err := decodeTimestamp(raw)
	if err != nil {
		return fail("date", "%v", err)
	}
	tx.Date = date

	raw, ok = required("type")
	if !ok {
		return fail("type", "missing")
	}
	if err := json.Unmarshal(raw, &tx.Type); err != nil {
		return fail("type", "%v", err)
	}

	raw, ok = required("description")
	if !ok {
		return fail("description", "missing")
	}
	if err := json.Unmarshal(raw, &tx.Description); err != nil {
		return fail("description", "must be a string, got %s", raw)
	}

	raw, ok = required("amount")
	if !ok {
		return fail("amount", "missing")
	}
	if err := json.Unmarshal(raw, &tx.Amount); err != nil {
		return fail("amount", "must be a number, got %s", raw)
	}
	if tx.Amount.IsNegative() {
		return fail("amount", "must not be negative, got %s", tx.Amount)
	}

	return tx, nil
}

// decodeTimestamp accepts an RFC 3339 string, or a number of seconds since
// the Unix epoch as found in legacy documents.
func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return t, nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return time.Time{}, fmt.Errorf("must be a timestamp, got %s", raw)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
