// Package ledger derives every reported view of the shared fund from a
// snapshot of the raw record collections: pool totals, per-member
// balances, per-project spend, category breakdowns, calendar trends, and
// budget progress.
//
// Every function in this package is pure and total: it takes its full
// input as parameters, never mutates them, never retains state between
// calls, and never fails — absent or empty inputs yield zeroed or empty
// outputs, dangling references fall into catch-all buckets, and every
// division is guarded so no result is ever NaN or infinite. Callers are
// free to invoke these functions repeatedly and concurrently.
package ledger
