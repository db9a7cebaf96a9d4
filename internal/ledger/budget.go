package ledger

import (
	"sort"

	"fondo/internal/core"
)

// DefaultFallbackHeadcount stands in for the household size when no user
// records have loaded yet. The value matches the household the original
// deployment was built for; override it through configuration
// (FALLBACK_HEADCOUNT) rather than relying on it.
const DefaultFallbackHeadcount = 4

// Progress is one member's standing against the equal-split funding
// target.
type Progress struct {
	UserID        string
	UserName      string
	Contributed   core.Money
	Expected      core.Money
	Remaining     core.Money
	Percentage    float64
	IsCurrentUser bool
}

// BudgetOptions tunes ComputeBudgetProgress.
type BudgetOptions struct {
	// FallbackHeadcount is the divisor used when the user list is
	// empty; zero or negative means DefaultFallbackHeadcount.
	FallbackHeadcount int

	// CurrentUserID marks one output row with IsCurrentUser for the
	// caller's session; empty marks none.
	CurrentUserID string
}

// EffectiveBudgetTotal sums each project's funding target: the declared
// budget when one is set, otherwise the project's actual spend stands in
// as the target.
func EffectiveBudgetTotal(projects []core.Project, txs []core.Transaction) core.Money {
	spent := make(map[string]int64, len(projects))
	for _, tx := range txs {
		if tx.Type == core.Expense && tx.ProjectID != "" {
			spent[tx.ProjectID] += tx.Amount.Cents
		}
	}
	var total int64
	for _, p := range projects {
		if p.Budget.Cents > 0 {
			total += p.Budget.Cents
		} else {
			total += spent[p.ID]
		}
	}
	return core.Money{Cents: total}
}

// ExpectedPerUser divides the combined funding target evenly across the
// household. When stats is empty the fallback headcount applies, floored
// at one so the division is always defined.
func ExpectedPerUser(projects []core.Project, txs []core.Transaction, headcount, fallback int) core.Money {
	if headcount < 1 {
		if fallback < 1 {
			fallback = DefaultFallbackHeadcount
		}
		headcount = fallback
	}
	total := EffectiveBudgetTotal(projects, txs)
	return core.Money{Cents: total.Cents / int64(headcount)}
}

// ComputeBudgetProgress reports how far each member is toward their
// equal share of the combined project budgets. Percentage is clamped to
// [0, 100] and is zero whenever the expected amount is zero; remaining
// never goes negative. Rows are sorted by descending percentage —
// members furthest ahead first — which is a display choice, not an
// accounting one.
func ComputeBudgetProgress(projects []core.Project, txs []core.Transaction, stats []UserStats, opts BudgetOptions) []Progress {
	expected := ExpectedPerUser(projects, txs, len(stats), opts.FallbackHeadcount)

	out := make([]Progress, 0, len(stats))
	for _, st := range stats {
		p := Progress{
			UserID:        st.UserID,
			UserName:      st.UserName,
			Contributed:   st.TotalContributed,
			Expected:      expected,
			IsCurrentUser: opts.CurrentUserID != "" && st.UserID == opts.CurrentUserID,
		}
		if remaining := expected.Cents - st.TotalContributed.Cents; remaining > 0 {
			p.Remaining = core.Money{Cents: remaining}
		}
		if expected.Cents > 0 {
			pct := 100 * float64(st.TotalContributed.Cents) / float64(expected.Cents)
			if pct > 100 {
				pct = 100
			}
			p.Percentage = pct
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out
}
