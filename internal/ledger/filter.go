package ledger

import (
	"strings"
	"time"

	"fondo/internal/core"
)

// Filter narrows a transaction list before aggregation. Filtering is a
// separate pass by design: the aggregators themselves never filter, so
// they behave identically on a full set or a pre-filtered subset.
//
// Zero-value fields are inactive. The date range is inclusive on both
// ends; the search term matches case-insensitively on the description.
type Filter struct {
	Types      []core.TransactionType
	ProjectIDs []string
	From       time.Time
	To         time.Time
	Search     string
}

// IsZero reports whether the filter would pass every transaction through.
func (f Filter) IsZero() bool {
	return len(f.Types) == 0 && len(f.ProjectIDs) == 0 &&
		f.From.IsZero() && f.To.IsZero() && f.Search == ""
}

// Match reports whether a single transaction passes the filter.
func (f Filter) Match(tx core.Transaction) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if tx.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.ProjectIDs) > 0 {
		ok := false
		for _, id := range f.ProjectIDs {
			if tx.ProjectID == id {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	if f.Search != "" {
		if !strings.Contains(strings.ToLower(tx.Description), strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// Apply returns the transactions that pass the filter, preserving input
// order. The input slice is never modified.
func (f Filter) Apply(txs []core.Transaction) []core.Transaction {
	if f.IsZero() {
		out := make([]core.Transaction, len(txs))
		copy(out, txs)
		return out
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
