package ledger

import (
	"fondo/internal/core"
)

// UserStats is one member's position against the pool.
type UserStats struct {
	UserID           string
	UserName         string
	TotalContributed core.Money
	TotalExpenses    core.Money
	Share            core.Money
	Balance          core.Money
}

// ProjectStats aggregates spend for one project. ContributionCount stays
// zero in well-formed data because contributions never carry a project
// reference; it is reported anyway so garbage input surfaces instead of
// silently disappearing.
type ProjectStats struct {
	ProjectID         string
	ProjectName       string
	TotalSpent        core.Money
	TransactionCount  int
	ContributionCount int
	ExpenseCount      int
}

// Summary is the full derived state of the pool.
//
// TotalInBox == TotalContributed - TotalExpenses holds exactly: all three
// are computed on integer cents in a single pass.
type Summary struct {
	TotalContributed core.Money
	TotalExpenses    core.Money
	TotalInBox       core.Money
	Users            []UserStats
	Projects         []ProjectStats
}

// ComputeSummary reduces the transaction list into pool totals, one
// UserStats row per known user, and one ProjectStats row per known
// project. It is filter-agnostic: hand it a pre-filtered subset and it
// aggregates exactly that subset.
//
// Share is an equal split of ALL expenses across the household — every
// member owes the same share regardless of who spent what or on which
// project. That is a deliberate policy of the fund, not an accident of
// implementation. The divisor is max(1, len(users)); the remainder cents
// of the division are handed out one per user in input order, so shares
// always sum exactly to the expense total and balances conserve:
// the sum of all balances equals TotalContributed - TotalExpenses.
func ComputeSummary(txs []core.Transaction, users []core.User, projects []core.Project) Summary {
	var s Summary

	contributedBy := make(map[string]int64, len(users))
	spentBy := make(map[string]int64, len(users))

	type projAgg struct {
		spent         int64
		contributions int
		expenses      int
	}
	byProject := make(map[string]*projAgg, len(projects))
	for _, p := range projects {
		byProject[p.ID] = &projAgg{}
	}

	for _, tx := range txs {
		switch tx.Type {
		case core.Contribution:
			s.TotalContributed.Cents += tx.Amount.Cents
			contributedBy[tx.UserID] += tx.Amount.Cents
			if agg, ok := byProject[tx.ProjectID]; ok && tx.ProjectID != "" {
				agg.contributions++
			}
		case core.Expense:
			s.TotalExpenses.Cents += tx.Amount.Cents
			spentBy[tx.UserID] += tx.Amount.Cents
			if agg, ok := byProject[tx.ProjectID]; ok && tx.ProjectID != "" {
				agg.spent += tx.Amount.Cents
				agg.expenses++
			}
		}
	}
	s.TotalInBox.Cents = s.TotalContributed.Cents - s.TotalExpenses.Cents

	headcount := int64(len(users))
	if headcount < 1 {
		headcount = 1
	}
	baseShare := s.TotalExpenses.Cents / headcount
	remainder := s.TotalExpenses.Cents % headcount

	s.Users = make([]UserStats, 0, len(users))
	for i, u := range users {
		share := baseShare
		if int64(i) < remainder {
			share++
		}
		s.Users = append(s.Users, UserStats{
			UserID:           u.ID,
			UserName:         u.Name,
			TotalContributed: core.Money{Cents: contributedBy[u.ID]},
			TotalExpenses:    core.Money{Cents: spentBy[u.ID]},
			Share:            core.Money{Cents: share},
			Balance:          core.Money{Cents: contributedBy[u.ID] - share},
		})
	}

	s.Projects = make([]ProjectStats, 0, len(projects))
	for _, p := range projects {
		agg := byProject[p.ID]
		s.Projects = append(s.Projects, ProjectStats{
			ProjectID:         p.ID,
			ProjectName:       p.Name,
			TotalSpent:        core.Money{Cents: agg.spent},
			TransactionCount:  agg.contributions + agg.expenses,
			ContributionCount: agg.contributions,
			ExpenseCount:      agg.expenses,
		})
	}

	return s
}
