package gitgraph

// assignSourcesTargets links every branch to the branch its merge commit
// belongs to (target) and to the branches its commits have parents on
// (source), recording their order groups for column placement.
func assignSourcesTargets(commits []Commit, indices map[string]int, branches []Branch) {
	for i := range branches {
		b := &branches[i]
		b.TargetBranch = Unset
		b.Visual.TargetOrderGroup = Unset
		if b.MergeTarget == "" {
			continue
		}
		mi, ok := indices[b.MergeTarget]
		if !ok {
			continue
		}
		if t := commits[mi].Trace; t != Unset {
			b.TargetBranch = t
			b.Visual.TargetOrderGroup = branches[t].Visual.OrderGroup
		}
	}

	for i := range commits {
		c := &commits[i]
		if c.Trace == Unset {
			continue
		}
		b := &branches[c.Trace]
		for _, p := range c.Parents {
			pi, ok := indices[p]
			if !ok {
				continue
			}
			pt := commits[pi].Trace
			if pt == Unset || pt == c.Trace {
				continue
			}
			// The source is the highest-grouped candidate over all of the
			// branch's commits; ties keep the first one seen.
			if g := branches[pt].Visual.OrderGroup; b.SourceBranch == Unset || g > b.Visual.SourceOrderGroup {
				b.SourceBranch = pt
				b.Visual.SourceOrderGroup = g
			}
		}
	}
}
