package services

import (
	"reflect"
	"testing"
	"time"

	"fondo/internal/core"
	"fondo/internal/ledger"
	"fondo/internal/snapshot"
)

func seededStore() *snapshot.Store {
	store := snapshot.NewStore()
	store.Replace(snapshot.Snapshot{
		Users:    []core.User{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Beto"}},
		Projects: []core.Project{{ID: "p1", Name: "Techo", Budget: core.Money{Cents: 20000}, Status: core.ProjectActive}},
		Categories: []core.Category{
			{ID: "g1", Name: "Materiales", IsGroup: true},
			{ID: "c1", Name: "Cemento", ParentID: "g1"},
		},
		Transactions: []core.Transaction{
			{ID: "t1", Type: core.Contribution, Amount: core.Money{Cents: 10000}, UserID: "u1",
				Description: "aporte", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "t2", Type: core.Expense, Amount: core.Money{Cents: 6000}, ProjectID: "p1", CategoryID: "c1",
				UserID: "u1", Description: "cemento", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
		},
	})
	return store
}

func TestLedgerServiceSummary(t *testing.T) {
	svc := NewLedgerService(seededStore(), DefaultLedgerServiceConfig())

	s := svc.Summary(ledger.Filter{})
	if s.TotalContributed.Cents != 10000 || s.TotalExpenses.Cents != 6000 {
		t.Fatalf("summary totals = %+v", s)
	}

	// Second call serves the memoized value.
	again := svc.Summary(ledger.Filter{})
	if !reflect.DeepEqual(s, again) {
		t.Fatalf("memoized result differs")
	}
}

func TestLedgerServiceSnapshotInvalidation(t *testing.T) {
	store := seededStore()
	svc := NewLedgerService(store, DefaultLedgerServiceConfig())

	before := svc.Summary(ledger.Filter{})
	if before.TotalExpenses.Cents != 6000 {
		t.Fatalf("before = %+v", before)
	}

	// Replacing the snapshot changes the version, so the stale cached
	// summary must not be served.
	snap := store.Current()
	snap.Transactions = append(snap.Transactions, core.Transaction{
		ID: "t3", Type: core.Expense, Amount: core.Money{Cents: 1000}, ProjectID: "p1",
		UserID: "u2", Description: "arena", Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
	})
	store.Replace(snap)

	after := svc.Summary(ledger.Filter{})
	if after.TotalExpenses.Cents != 7000 {
		t.Fatalf("after = %+v, want expenses 7000", after)
	}
}

func TestLedgerServiceFilteredViews(t *testing.T) {
	svc := NewLedgerService(seededStore(), DefaultLedgerServiceConfig())

	b := svc.Breakdown(ledger.Filter{})
	if b.Total.Cents != 6000 || len(b.Categories) != 1 {
		t.Fatalf("breakdown = %+v", b)
	}

	groups := svc.Hierarchy(ledger.ResolveOptions{})
	if len(groups) != 1 || groups[0].Group.ID != "g1" {
		t.Fatalf("hierarchy = %+v", groups)
	}

	buckets := svc.Trend(ledger.Monthly, ledger.Filter{}, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	if len(buckets) != 1 || buckets[0].Total.Cents != 6000 {
		t.Fatalf("trend = %+v", buckets)
	}
}

func TestLedgerServiceBudgetProgress(t *testing.T) {
	svc := NewLedgerService(seededStore(), DefaultLedgerServiceConfig())

	rows := svc.BudgetProgress("u1")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Budget 20000 across 2 members: 10000 each. Ana contributed the
	// full share.
	var ana *ledger.Progress
	for i := range rows {
		if rows[i].UserID == "u1" {
			ana = &rows[i]
		}
	}
	if ana == nil || ana.Percentage != 100 || !ana.IsCurrentUser {
		t.Fatalf("ana row = %+v", ana)
	}
}

func TestLedgerServiceBudgetProgressSingleSnapshot(t *testing.T) {
	store := seededStore()
	svc := NewLedgerService(store, DefaultLedgerServiceConfig())

	// Warm the summary cache on the first snapshot version, then replace
	// the snapshot. Budget progress must be computed entirely from one
	// snapshot read, never from user stats belonging to another version.
	svc.Summary(ledger.Filter{})

	snap := store.Current()
	snap.Users = append(snap.Users, core.User{ID: "u3", Name: "Caro"})
	snap.Transactions = append(snap.Transactions, core.Transaction{
		ID: "t3", Type: core.Contribution, Amount: core.Money{Cents: 5000}, UserID: "u3",
		Description: "aporte", Date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	store.Replace(snap)

	rows := svc.BudgetProgress("")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows after snapshot replacement, got %d", len(rows))
	}

	cur := store.Current()
	want := ledger.ComputeBudgetProgress(cur.Projects, cur.Transactions,
		ledger.ComputeSummary(cur.Transactions, cur.Users, cur.Projects).Users,
		ledger.BudgetOptions{FallbackHeadcount: ledger.DefaultFallbackHeadcount})
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("progress diverged from the current snapshot:\n got %+v\nwant %+v", rows, want)
	}
}
