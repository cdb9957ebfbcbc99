package gitgraph

import (
	"cmp"
	"slices"

	"github.com/matzehuels/gitlanes/pkg/settings"
)

// interval is a closed range of commit indices.
type interval struct{ start, end int }

func (a interval) overlaps(b interval) bool {
	return a.start <= b.end && a.end >= b.start
}

// placement is a branch waiting for a column.
type placement struct {
	branch   int
	span     interval
	maxGroup int
}

// assignColumns packs branches into columns. Each order group is packed
// independently and groups are laid out left to right, so a final column is
// the local column plus the number of columns used by lower groups.
//
// Branches are placed by the larger of their source and target order group,
// then by span length (shortest or longest first) and then by span start
// (earliest first when forward). Each branch takes the first column with no
// overlapping span that is not held by the branch it merges into. Branches
// reaching toward a higher group scan from the right and, when nothing fits,
// open a new column on the left of their group.
func assignColumns(commits []Commit, indices map[string]int, branches []Branch, bs *settings.BranchSettings, order settings.BranchOrder) {
	groups := len(bs.Order) + 1
	noGroup := len(bs.Order) + 1
	last := len(commits) - 1

	lengthFactor, startFactor := 1, 1
	if !order.ShortestFirst {
		lengthFactor = -1
	}
	if !order.Forward {
		startFactor = -1
	}

	var queue []placement
	for i := range branches {
		b := &branches[i]
		b.Visual.Column = Unset
		if b.Span.IsEmpty() {
			continue
		}
		span := interval{start: b.Span.Start, end: b.Span.End}
		if span.start == Unset {
			span.start = 0
		}
		if span.end == Unset {
			span.end = last
		}
		src, trg := b.Visual.SourceOrderGroup, b.Visual.TargetOrderGroup
		if src == Unset {
			src = noGroup
		}
		if trg == Unset {
			trg = noGroup
		}
		queue = append(queue, placement{branch: i, span: span, maxGroup: max(src, trg)})
	}

	slices.SortStableFunc(queue, func(a, b placement) int {
		if c := cmp.Compare(a.maxGroup, b.maxGroup); c != 0 {
			return c
		}
		la := (a.span.end - a.span.start) * lengthFactor
		lb := (b.span.end - b.span.start) * lengthFactor
		if c := cmp.Compare(la, lb); c != 0 {
			return c
		}
		return cmp.Compare(a.span.start*startFactor, b.span.start*startFactor)
	})

	occupied := make([][][]interval, groups)
	for _, p := range queue {
		b := &branches[p.branch]
		group := b.Visual.OrderGroup
		cols := occupied[group]
		right := alignRight(branches, b)
		held := mergeColumn(commits, indices, branches, b)

		found := Unset
		for k := range cols {
			col := k
			if right {
				col = len(cols) - 1 - k
			}
			if col == held || anyOverlap(cols[col], p.span) {
				continue
			}
			found = col
			break
		}

		switch {
		case found != Unset:
		case right && len(cols) > 0:
			for i := range branches {
				o := &branches[i]
				if o.Visual.Column != Unset && o.Visual.OrderGroup == group {
					o.Visual.Column++
				}
			}
			cols = append([][]interval{nil}, cols...)
			found = 0
		default:
			cols = append(cols, nil)
			found = len(cols) - 1
		}

		cols[found] = append(cols[found], p.span)
		occupied[group] = cols
		b.Visual.Column = found
	}

	offsets := make([]int, groups)
	for g := 1; g < groups; g++ {
		offsets[g] = offsets[g-1] + len(occupied[g-1])
	}
	for i := range branches {
		v := &branches[i].Visual
		if v.Column != Unset {
			v.Column += offsets[v.OrderGroup]
		}
	}
}

func anyOverlap(col []interval, span interval) bool {
	for _, iv := range col {
		if iv.overlaps(span) {
			return true
		}
	}
	return false
}

// alignRight reports whether b diverges from or merges into a branch drawn
// in a higher order group.
func alignRight(branches []Branch, b *Branch) bool {
	if s := b.SourceBranch; s != Unset && branches[s].Visual.OrderGroup > b.Visual.OrderGroup {
		return true
	}
	if t := b.TargetBranch; t != Unset && branches[t].Visual.OrderGroup > b.Visual.OrderGroup {
		return true
	}
	return false
}

// mergeColumn returns the local column of the branch owning b's merge commit
// when it shares b's order group, or Unset.
func mergeColumn(commits []Commit, indices map[string]int, branches []Branch, b *Branch) int {
	if b.MergeTarget == "" {
		return Unset
	}
	mi, ok := indices[b.MergeTarget]
	if !ok {
		return Unset
	}
	t := commits[mi].Trace
	if t == Unset {
		return Unset
	}
	m := &branches[t]
	if m == b || m.Visual.OrderGroup != b.Visual.OrderGroup {
		return Unset
	}
	return m.Visual.Column
}
