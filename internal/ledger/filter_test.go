package ledger

import (
	"testing"
	"time"

	"fondo/internal/core"
)

func TestFilterApply(t *testing.T) {
	txs := []core.Transaction{
		{ID: "t1", Type: core.Expense, ProjectID: "p1", Description: "Cemento gris",
			Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "t2", Type: core.Expense, ProjectID: "p2", Description: "arena",
			Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "t3", Type: core.Contribution, Description: "aporte junio",
			Date: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{"zero filter passes all", Filter{}, []string{"t1", "t2", "t3"}},
		{"by type", Filter{Types: []core.TransactionType{core.Contribution}}, []string{"t3"}},
		{"by project", Filter{ProjectIDs: []string{"p2"}}, []string{"t2"}},
		{"date range is inclusive", Filter{
			From: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		}, []string{"t2", "t3"}},
		{"search is case-insensitive", Filter{Search: "CEMENTO"}, []string{"t1"}},
		{"conjunction of conditions", Filter{
			Types:      []core.TransactionType{core.Expense},
			ProjectIDs: []string{"p1", "p2"},
			Search:     "arena",
		}, []string{"t2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(txs)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Apply() returned %d transactions, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Apply()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilterApplyDoesNotAliasInput(t *testing.T) {
	txs := []core.Transaction{{ID: "t1", Description: "original"}}
	got := Filter{}.Apply(txs)

	got[0].Description = "changed"
	if txs[0].Description != "original" {
		t.Error("Apply() must copy, not alias, the input slice")
	}
}
