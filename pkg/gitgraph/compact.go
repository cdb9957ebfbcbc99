package gitgraph

// compact keeps the items for which keep returns true and returns them with
// a remap from old to new positions. Dropped positions map to Unset.
func compact[T any](items []T, keep func(i int, item *T) bool) ([]T, []int) {
	out := make([]T, 0, len(items))
	remap := make([]int, len(items))
	for i := range items {
		if keep(i, &items[i]) {
			remap[i] = len(out)
			out = append(out, items[i])
		} else {
			remap[i] = Unset
		}
	}
	return out, remap
}

// remapAll rewrites indices through remap, dropping those that map to Unset.
func remapAll(indices []int, remap []int) []int {
	if len(indices) == 0 {
		return indices
	}
	out := indices[:0]
	for _, i := range indices {
		if n := remap[i]; n != Unset {
			out = append(out, n)
		}
	}
	return out
}
