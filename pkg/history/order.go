package history

import "container/heap"

// TopoSort orders commits so that every commit comes before its parents, and
// among commits whose children have all been emitted the newest committer
// time goes first. Ties keep input order. Parents that are not part of
// commits are ignored.
func TopoSort(commits []Commit) []Commit {
	pos := make(map[string]int, len(commits))
	for i, c := range commits {
		pos[c.OID] = i
	}

	pending := make([]int, len(commits))
	for _, c := range commits {
		for _, p := range uniqueParents(c.Parents) {
			if j, ok := pos[p]; ok {
				pending[j]++
			}
		}
	}

	q := &readyQueue{commits: commits}
	for i := range commits {
		if pending[i] == 0 {
			heap.Push(q, i)
		}
	}

	out := make([]Commit, 0, len(commits))
	for q.Len() > 0 {
		i := heap.Pop(q).(int)
		out = append(out, commits[i])
		for _, p := range uniqueParents(commits[i].Parents) {
			j, ok := pos[p]
			if !ok {
				continue
			}
			pending[j]--
			if pending[j] == 0 {
				heap.Push(q, j)
			}
		}
	}
	return out
}

func uniqueParents(parents []string) []string {
	if len(parents) < 2 {
		return parents
	}
	seen := make(map[string]struct{}, len(parents))
	out := parents[:0:0]
	for _, p := range parents {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

type readyQueue struct {
	commits []Commit
	items   []int
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(a, b int) bool {
	ta := q.commits[q.items[a]].Committer.When
	tb := q.commits[q.items[b]].Committer.When
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return q.items[a] < q.items[b]
}

func (q *readyQueue) Swap(a, b int) { q.items[a], q.items[b] = q.items[b], q.items[a] }

func (q *readyQueue) Push(x any) { q.items = append(q.items, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}
