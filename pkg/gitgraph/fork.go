package gitgraph

// correctForkMerges renames inferred branches that merge back into a branch
// with their own name to fork/<name> and restyles them under the new name.
// The colour rotation uses the branch index.
func correctForkMerges(commits []Commit, indices map[string]int, branches []Branch, x *extractor) {
	for i := range branches {
		b := &branches[i]
		if b.MergeTarget == "" {
			continue
		}
		mi, ok := indices[b.MergeTarget]
		if !ok {
			continue
		}
		t := commits[mi].Trace
		if t == Unset || t == i || branches[t].Name != b.Name {
			continue
		}
		b.Name = forkPrefix + b.Name
		x.style(b, i)
	}
}
