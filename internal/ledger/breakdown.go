package ledger

import (
	"sort"

	"fondo/internal/core"
)

// UncategorizedName labels the bucket that collects expenses whose
// category reference is empty or points to a record that no longer
// exists. Dangling references are tolerated, not rejected, so the data
// survives category reshuffles and migrations.
const UncategorizedName = "uncategorized"

// CategoryAggregate is one category's slice of the filtered spend.
type CategoryAggregate struct {
	CategoryID string
	Name       string
	Total      core.Money
	Percentage float64
}

// GroupAggregate sums the categories under one group folder.
type GroupAggregate struct {
	GroupID    string
	Name       string
	Total      core.Money
	Percentage float64
}

// Breakdown is the category view of a (possibly pre-filtered) expense
// set. Percentages are relative to Total, the expense sum of exactly the
// transactions handed in, and are always within [0, 100]; when Total is
// zero every percentage is zero.
type Breakdown struct {
	Total      core.Money
	Categories []CategoryAggregate
	Groups     []GroupAggregate
}

// ComputeCategoryBreakdown aggregates expense amounts per category and
// per group. Contributions in the input are ignored. Categories and
// groups with no matching spend are omitted; output is sorted by
// descending total, ties keeping catalog order.
func ComputeCategoryBreakdown(txs []core.Transaction, categories []core.Category) Breakdown {
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := make(map[string]int64)
	var uncategorized int64
	var total int64

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		total += tx.Amount.Cents
		if c, ok := byID[tx.CategoryID]; ok && tx.CategoryID != "" && !c.IsGroup {
			totals[c.ID] += tx.Amount.Cents
		} else {
			uncategorized += tx.Amount.Cents
		}
	}

	b := Breakdown{Total: core.Money{Cents: total}}

	groupTotals := make(map[string]int64)
	for _, c := range categories {
		cents, ok := totals[c.ID]
		if !ok {
			continue
		}
		b.Categories = append(b.Categories, CategoryAggregate{
			CategoryID: c.ID,
			Name:       c.Name,
			Total:      core.Money{Cents: cents},
			Percentage: percentage(cents, total),
		})
		if parent, ok := byID[c.ParentID]; ok && parent.IsGroup {
			groupTotals[parent.ID] += cents
		}
	}
	if uncategorized > 0 {
		b.Categories = append(b.Categories, CategoryAggregate{
			Name:       UncategorizedName,
			Total:      core.Money{Cents: uncategorized},
			Percentage: percentage(uncategorized, total),
		})
	}

	for _, c := range categories {
		cents, ok := groupTotals[c.ID]
		if !ok {
			continue
		}
		b.Groups = append(b.Groups, GroupAggregate{
			GroupID:    c.ID,
			Name:       c.Name,
			Total:      core.Money{Cents: cents},
			Percentage: percentage(cents, total),
		})
	}

	sort.SliceStable(b.Categories, func(i, j int) bool {
		return b.Categories[i].Total.Cents > b.Categories[j].Total.Cents
	})
	sort.SliceStable(b.Groups, func(i, j int) bool {
		return b.Groups[i].Total.Cents > b.Groups[j].Total.Cents
	})

	return b
}

// percentage returns 100*part/whole, or 0 when the whole is zero. The
// zero guard is deliberate: an empty filtered set must yield 0, never
// NaN or a division panic.
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
