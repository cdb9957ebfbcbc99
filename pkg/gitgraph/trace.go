package gitgraph

import "strings"

// assignBranches traces every branch in priority order and drops the ones
// that cannot be drawn: branches whose target lies outside the walked window,
// and merged branches that ended up owning no commit. Commit traces and ref
// lists are remapped to the surviving branch indices.
func assignBranches(commits []Commit, indices map[string]int, branches []Branch) []Branch {
	keep := make([]bool, len(branches))

	for bi := range branches {
		b := &branches[bi]
		idx, ok := indices[b.Target]
		if !ok {
			continue
		}
		switch {
		case b.IsTag:
			commits[idx].Tags = append(commits[idx].Tags, bi)
		case !b.IsMerged:
			commits[idx].Branches = append(commits[idx].Branches, bi)
		}
		claimed := traceBranch(commits, indices, branches, bi)
		keep[bi] = claimed || !b.IsMerged
	}

	owned := make([]int, len(branches))
	for i := range commits {
		if t := commits[i].Trace; t != Unset {
			owned[t]++
		}
	}

	kept, remap := compact(branches, func(i int, b *Branch) bool {
		if !keep[i] {
			return false
		}
		return owned[i] > 0 || !b.IsMerged || b.IsTag
	})

	for i := range commits {
		c := &commits[i]
		if c.Trace != Unset {
			c.Trace = remap[c.Trace]
		}
		c.Branches = remapAll(c.Branches, remap)
		c.Tags = remapAll(c.Tags, remap)
	}
	return kept
}

// traceBranch walks back from the branch target along first parents and
// claims every commit nobody owns yet. It stops at the first commit already
// owned by another branch, or at a root, and derives the branch span from
// where it stopped. It reports whether any commit was claimed.
//
// Reaching a commit owned by a branch of the same name whose span starts no
// earlier than this one joins the two: the owner's span is widened to cover
// the commit and this branch ends at the last commit it claimed. Unset span
// starts compare as zero. Ownership is never reassigned.
func traceBranch(commits []Commit, indices map[string]int, branches []Branch, bi int) bool {
	b := &branches[bi]
	cur := b.Target
	prev := Unset
	stop := Unset
	claimed := false

	for {
		idx, ok := indices[cur]
		if !ok {
			break
		}
		c := &commits[idx]

		if c.Trace != Unset && c.Trace != bi {
			other := &branches[c.Trace]
			if other.Name == b.Name && orZero(other.Span.Start) >= orZero(b.Span.Start) {
				other.Span = other.Span.include(idx)
				if prev != Unset {
					stop = prev
				} else {
					stop = idx - 1
				}
				break
			}

			if strings.HasPrefix(b.Name, originPrefix) && b.Name[len(originPrefix):] == other.Name {
				b.Visual.TermColor = other.Visual.TermColor
				b.Visual.SVGColor = other.Visual.SVGColor
			}

			stop = idx - 1
			if prev != Unset && commits[prev].IsMerge() {
				stop = prev
				for _, child := range c.Children {
					if ci, ok := indices[child]; ok && ci > stop {
						stop = ci
					}
				}
			}
			break
		}

		c.Trace = bi
		claimed = true

		if len(c.Parents) == 0 {
			stop = idx
			break
		}
		prev = idx
		cur = c.Parents[0]
	}

	switch {
	case b.Span.Start == Unset:
		b.Span.End = stop
	case stop == Unset:
		b.Span.End = Unset
	case stop < b.Span.Start:
		b.Span = emptySpan()
	default:
		b.Span.End = stop
	}
	return claimed
}

func orZero(i int) int {
	if i == Unset {
		return 0
	}
	return i
}

// include widens s so it covers idx. Unset bounds stay unset.
func (s Span) include(idx int) Span {
	if s.Start != Unset && idx < s.Start {
		s.Start = idx
	}
	if s.End != Unset && idx > s.End {
		s.End = idx
	}
	return s
}
