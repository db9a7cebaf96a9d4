package ledger

import (
	"reflect"
	"testing"
	"time"

	"fondo/internal/core"
)

func tx(id string, typ core.TransactionType, cents int64, projectID, categoryID, userID string, date time.Time) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		ProjectID:   projectID,
		CategoryID:  categoryID,
		UserID:      userID,
		Description: "tx " + id,
		Date:        date,
	}
}

var day = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestComputeSummaryScenario(t *testing.T) {
	// Two contributions of 100 and 50, one expense of 60 on project P1,
	// two members: the worked example the fund's rules are defined by.
	users := []core.User{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Beto"}}
	projects := []core.Project{{ID: "p1", Name: "Techo", Status: core.ProjectActive}}
	txs := []core.Transaction{
		tx("t1", core.Contribution, 10000, "", "", "u1", day),
		tx("t2", core.Contribution, 5000, "", "", "u2", day),
		tx("t3", core.Expense, 6000, "p1", "c1", "u1", day),
	}

	s := ComputeSummary(txs, users, projects)

	if s.TotalContributed.Cents != 15000 {
		t.Fatalf("TotalContributed = %d, want 15000", s.TotalContributed.Cents)
	}
	if s.TotalExpenses.Cents != 6000 {
		t.Fatalf("TotalExpenses = %d, want 6000", s.TotalExpenses.Cents)
	}
	if s.TotalInBox.Cents != 9000 {
		t.Fatalf("TotalInBox = %d, want 9000", s.TotalInBox.Cents)
	}

	if len(s.Users) != 2 {
		t.Fatalf("expected 2 user rows, got %d", len(s.Users))
	}
	u1, u2 := s.Users[0], s.Users[1]
	if u1.Share.Cents != 3000 || u2.Share.Cents != 3000 {
		t.Fatalf("shares = %d, %d; want 3000 each", u1.Share.Cents, u2.Share.Cents)
	}
	if u1.Balance.Cents != 7000 {
		t.Fatalf("balance(u1) = %d, want 7000", u1.Balance.Cents)
	}
	if u2.Balance.Cents != 2000 {
		t.Fatalf("balance(u2) = %d, want 2000", u2.Balance.Cents)
	}

	if len(s.Projects) != 1 {
		t.Fatalf("expected 1 project row, got %d", len(s.Projects))
	}
	p := s.Projects[0]
	if p.TotalSpent.Cents != 6000 || p.ExpenseCount != 1 || p.ContributionCount != 0 {
		t.Fatalf("project stats = %+v", p)
	}
}

func TestComputeSummaryEmptyInputs(t *testing.T) {
	s := ComputeSummary(nil, nil, nil)
	if s.TotalContributed.Cents != 0 || s.TotalExpenses.Cents != 0 || s.TotalInBox.Cents != 0 {
		t.Fatalf("empty inputs should produce zero totals: %+v", s)
	}
	if len(s.Users) != 0 || len(s.Projects) != 0 {
		t.Fatalf("empty inputs should produce empty rows: %+v", s)
	}
}

func TestComputeSummaryNoUsersNoDivideByZero(t *testing.T) {
	// With nobody registered the divisor floors at one: a hypothetical
	// single member would owe the whole expense total.
	txs := []core.Transaction{tx("t1", core.Expense, 10000, "p1", "c1", "ghost", day)}
	s := ComputeSummary(txs, nil, nil)
	if s.TotalExpenses.Cents != 10000 {
		t.Fatalf("TotalExpenses = %d", s.TotalExpenses.Cents)
	}
	// No rows, but also no panic and exact totals.
	if len(s.Users) != 0 {
		t.Fatalf("expected no user rows")
	}
}

func TestComputeSummaryBalanceConservation(t *testing.T) {
	// Shares hand out the division remainder one cent at a time, so the
	// sum of balances equals contributed minus spent to the cent.
	users := []core.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	txs := []core.Transaction{
		tx("t1", core.Contribution, 9999, "", "", "u1", day),
		tx("t2", core.Expense, 1000, "p1", "c1", "u2", day),   // 1000 / 3 leaves remainder 1
		tx("t3", core.Expense, 333, "p1", "c1", "u3", day),    // odd amounts on purpose
		tx("t4", core.Contribution, 1, "", "", "u2", day),
	}
	s := ComputeSummary(txs, users, nil)

	var shareSum, balanceSum int64
	for _, u := range s.Users {
		shareSum += u.Share.Cents
		balanceSum += u.Balance.Cents
	}
	if shareSum != s.TotalExpenses.Cents {
		t.Fatalf("sum of shares = %d, want %d", shareSum, s.TotalExpenses.Cents)
	}
	if balanceSum != s.TotalContributed.Cents-s.TotalExpenses.Cents {
		t.Fatalf("sum of balances = %d, want %d", balanceSum, s.TotalInBox.Cents)
	}
	if s.TotalInBox.Cents != s.TotalContributed.Cents-s.TotalExpenses.Cents {
		t.Fatalf("accounting identity broken: %+v", s)
	}
}

func TestComputeSummaryIdempotent(t *testing.T) {
	users := []core.User{{ID: "u1", Name: "Ana"}}
	projects := []core.Project{{ID: "p1", Name: "Obra"}}
	txs := []core.Transaction{
		tx("t1", core.Contribution, 1234, "", "", "u1", day),
		tx("t2", core.Expense, 567, "p1", "c1", "u1", day),
	}
	first := ComputeSummary(txs, users, projects)
	second := ComputeSummary(txs, users, projects)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\n%+v\n%+v", first, second)
	}
}

func TestComputeSummaryFilterTransparency(t *testing.T) {
	// The aggregator must not depend on anything outside the list it is
	// given: aggregating a pre-filtered subset equals filtering the
	// aggregator's input by hand.
	users := []core.User{{ID: "u1"}, {ID: "u2"}}
	projects := []core.Project{{ID: "p1"}, {ID: "p2"}}
	txs := []core.Transaction{
		tx("t1", core.Expense, 1000, "p1", "c1", "u1", day),
		tx("t2", core.Expense, 2000, "p2", "c2", "u2", day),
		tx("t3", core.Contribution, 5000, "", "", "u1", day),
	}

	f := Filter{ProjectIDs: []string{"p1"}, Types: []core.TransactionType{core.Expense}}
	filtered := f.Apply(txs)

	var manual []core.Transaction
	for _, tc := range txs {
		if tc.Type == core.Expense && tc.ProjectID == "p1" {
			manual = append(manual, tc)
		}
	}

	if !reflect.DeepEqual(ComputeSummary(filtered, users, projects), ComputeSummary(manual, users, projects)) {
		t.Fatalf("aggregation depends on more than its input set")
	}
}

func TestComputeSummaryDoesNotMutateInput(t *testing.T) {
	txs := []core.Transaction{tx("t1", core.Expense, 100, "p1", "c1", "u1", day)}
	users := []core.User{{ID: "u1", Name: "Ana"}}
	before := make([]core.Transaction, len(txs))
	copy(before, txs)

	ComputeSummary(txs, users, nil)

	if !reflect.DeepEqual(txs, before) {
		t.Fatalf("input slice was mutated")
	}
}
