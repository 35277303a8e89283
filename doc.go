// Package cashbook provides the state of a personal finance tracker: a
// ledger of Income, Expense and Pending transactions with a running balance.
//
// The core pieces are:
//   - Transaction: one ledger event. Its amount is a non-negative decimal,
//     the sign comes from its Type, Pending never counts.
//   - Ledger: transactions newest first, the balance recomputed from scratch
//     after each add, update or remove, a pagination window, and change
//     subscriptions for the presentation layer.
//   - Store: the persistence adapter. It writes the whole ledger as one
//     versioned JSON document in a single slot of a key-value backend (see
//     package kv) and validates it on load.
//
// This package serves as the foundational logic for the `cbk` command-line
// tool.
package cashbook
