package gitgraph

import (
	"testing"
	"time"

	"github.com/matzehuels/gitlanes/pkg/history"
)

var epoch = time.Date(2025, 1, 29, 9, 0, 0, 0, time.UTC)

// fixture builds a history.Snapshot. Commits must be added parents first;
// each gets a committer time one minute after the previous one, so the walk
// order is the reverse of insertion unless the topology says otherwise.
type fixture struct {
	snap *history.Snapshot
	n    int
}

func newFixture() *fixture {
	return &fixture{snap: &history.Snapshot{}}
}

func (f *fixture) commit(oid, summary string, parents ...string) *fixture {
	when := epoch.Add(time.Duration(f.n) * time.Minute)
	f.n++
	sig := history.Signature{Name: "Ada", Email: "ada@example.com", When: when}
	f.snap.Commits = append(f.snap.Commits, history.Commit{
		OID:       oid,
		Parents:   parents,
		Message:   summary + "\n",
		Author:    sig,
		Committer: sig,
	})
	return f
}

func (f *fixture) branch(name, target string) *fixture {
	f.snap.Branches = append(f.snap.Branches, history.BranchRef{Name: name, Target: target})
	return f
}

func (f *fixture) remote(name, target string) *fixture {
	f.snap.Branches = append(f.snap.Branches, history.BranchRef{Name: name, Target: target, IsRemote: true})
	return f
}

func (f *fixture) tag(name, target string) *fixture {
	f.snap.TagRefs = append(f.snap.TagRefs, history.TagRef{Name: name, Target: target})
	return f
}

func (f *fixture) stash(oid string) *fixture {
	f.snap.StashCommits = append(f.snap.StashCommits, oid)
	return f
}

func (f *fixture) head(name, oid string) *fixture {
	f.snap.HeadRef = history.Head{OID: oid, Name: name, Kind: history.HeadBranch}
	return f
}

func (f *fixture) build(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(f.snap, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	checkInvariants(t, g)
	return g
}

// countingRepo records how often Walk is called.
type countingRepo struct {
	history.Repository
	walks int
}

func (r *countingRepo) Walk(fn history.WalkFunc) error {
	r.walks++
	return r.Repository.Walk(fn)
}

func branchNamed(t *testing.T, g *Graph, name string) (int, *Branch) {
	t.Helper()
	for i := range g.AllBranches {
		if g.AllBranches[i].Name == name {
			return i, &g.AllBranches[i]
		}
	}
	t.Fatalf("no branch named %q", name)
	return Unset, nil
}

func traceOf(t *testing.T, g *Graph, oid string) int {
	t.Helper()
	c, ok := g.Commit(oid)
	if !ok {
		t.Fatalf("commit %s not in graph", oid)
	}
	return c.Trace
}

// checkInvariants verifies the properties every Graph must have.
func checkInvariants(t *testing.T, g *Graph) {
	t.Helper()

	if len(g.Indices) != len(g.Commits) {
		t.Errorf("len(Indices) = %d, len(Commits) = %d", len(g.Indices), len(g.Commits))
	}
	for i := range g.Commits {
		c := &g.Commits[i]
		if got, ok := g.Indices[c.OID]; !ok || got != i {
			t.Errorf("Indices[%s] = %d, %v; want %d", c.ShortID(), got, ok, i)
		}
		if c.Trace == Unset {
			t.Errorf("commit %s survived without a trace", c.ShortID())
		} else if c.Trace < 0 || c.Trace >= len(g.AllBranches) {
			t.Errorf("commit %s trace %d out of range", c.ShortID(), c.Trace)
		}
	}

	for i := range g.AllBranches {
		a := &g.AllBranches[i]
		if a.Span.Start != Unset && a.Span.End != Unset && a.Span.Start > a.Span.End {
			t.Errorf("branch %s span %+v inverted", a.Name, a.Span)
		}
		if a.Span.IsEmpty() && a.Visual.Column != Unset {
			t.Errorf("branch %s owns no span but has column %d", a.Name, a.Visual.Column)
		}
		for j := i + 1; j < len(g.AllBranches); j++ {
			b := &g.AllBranches[j]
			if a.Visual.Column == Unset || a.Visual.Column != b.Visual.Column {
				continue
			}
			if a.Visual.OrderGroup != b.Visual.OrderGroup {
				t.Errorf("branches %s and %s share column %d across groups", a.Name, b.Name, a.Visual.Column)
				continue
			}
			if spansOverlap(a.Span, b.Span, len(g.Commits)-1) {
				t.Errorf("branches %s %+v and %s %+v overlap in column %d", a.Name, a.Span, b.Name, b.Span, a.Visual.Column)
			}
		}
	}
}

func spansOverlap(a, b Span, last int) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	bound := func(s Span) (int, int) {
		start, end := s.Start, s.End
		if start == Unset {
			start = 0
		}
		if end == Unset {
			end = last
		}
		return start, end
	}
	as, ae := bound(a)
	bs, be := bound(b)
	return as <= be && ae >= bs
}
