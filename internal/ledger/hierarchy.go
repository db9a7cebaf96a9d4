package ledger

import (
	"sort"
	"strings"

	"fondo/internal/core"
)

// Group is one entry of the resolved category tree: a folder and its
// member categories. The trailing orphan bucket has a nil Group.
type Group struct {
	Group *core.Category
	Items []core.Category
}

// ResolveOptions tunes the hierarchy resolver.
type ResolveOptions struct {
	// IncludeEmptyGroups keeps folders with no members in the output,
	// which management screens need; reporting views leave it off.
	IncludeEmptyGroups bool

	// NameFilter narrows items by case-insensitive substring match on
	// their own name or their folder's name. A folder whose name
	// matches keeps all of its items.
	NameFilter string
}

// Resolve builds the two-level category tree from a flat record list.
//
// Folders are ordered by ascending Order, items likewise within each
// folder; equal or missing Order values keep their input order. Every
// non-group record lands in exactly one bucket: its declared folder, or
// the orphan bucket when it has no parent — including when its ParentID
// points at a record that is missing or is not a folder. That tolerance
// is intentional; reorganizing categories must never make expenses
// unreachable.
func Resolve(categories []core.Category, opts ResolveOptions) []Group {
	var groups []core.Category
	var items []core.Category
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
		if c.IsGroup {
			groups = append(groups, c)
		} else {
			items = append(items, c)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Order < groups[j].Order })

	children := make(map[string][]core.Category, len(groups))
	var orphans []core.Category
	for _, item := range items {
		if parent, ok := byID[item.ParentID]; ok && item.ParentID != "" && parent.IsGroup {
			children[parent.ID] = append(children[parent.ID], item)
		} else {
			orphans = append(orphans, item)
		}
	}

	filter := strings.ToLower(strings.TrimSpace(opts.NameFilter))
	matches := func(name string) bool {
		return filter == "" || strings.Contains(strings.ToLower(name), filter)
	}

	var out []Group
	for _, g := range groups {
		members := children[g.ID]
		sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })

		if !matches(g.Name) {
			kept := members[:0:0]
			for _, m := range members {
				if matches(m.Name) {
					kept = append(kept, m)
				}
			}
			members = kept
		}

		if len(members) == 0 && !(opts.IncludeEmptyGroups && matches(g.Name)) {
			continue
		}
		g := g
		out = append(out, Group{Group: &g, Items: members})
	}

	sort.SliceStable(orphans, func(i, j int) bool { return orphans[i].Order < orphans[j].Order })
	if filter != "" {
		kept := orphans[:0:0]
		for _, o := range orphans {
			if matches(o.Name) {
				kept = append(kept, o)
			}
		}
		orphans = kept
	}
	if len(orphans) > 0 {
		out = append(out, Group{Items: orphans})
	}

	return out
}
