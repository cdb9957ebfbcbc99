package gitgraph

// Lane returns the rows the lane of branch b occupies when drawn: its span,
// stretched up to the merge commit that absorbed it and down to the parent it
// forked from. Branches without a column return an empty span.
func (g *Graph) Lane(b int) Span {
	if b < 0 || b >= len(g.AllBranches) {
		return emptySpan()
	}
	br := &g.AllBranches[b]
	if br.Visual.Column == Unset || br.Span.Start == Unset {
		return emptySpan()
	}

	lane := br.Span
	if lane.End == Unset {
		lane.End = len(g.Commits) - 1
	}
	if m, ok := g.Indices[br.MergeTarget]; ok && br.MergeTarget != "" && m < lane.Start {
		lane.Start = m
	}
	if parents := g.Commits[lane.End].Parents; len(parents) > 0 {
		if p, ok := g.Indices[parents[0]]; ok && p > lane.End {
			lane.End = p
		}
	}
	return lane
}
