package gitgraph

import "github.com/matzehuels/gitlanes/pkg/history"

// Unset marks an absent optional index.
const Unset = -1

const (
	originPrefix = "origin/"
	forkPrefix   = "fork/"
	tagPrefix    = "tags/"
)

// Commit is one laid out commit.
type Commit struct {
	history.Commit

	// Children holds the ids of walked commits listing this one as a parent.
	Children []string `json:"children,omitempty"`

	// Branches and Tags index the branches and tags pointing at this commit.
	Branches []int `json:"branches,omitempty"`
	Tags     []int `json:"tags,omitempty"`

	// Trace is the index of the branch owning this commit, or Unset.
	Trace int `json:"trace"`
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// ShortID returns the abbreviated commit id.
func (c *Commit) ShortID() string { return history.ShortID(c.OID) }

// Span is an inclusive range of commit indices. Start is the newest commit
// and End the oldest; either may be Unset.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsEmpty reports whether neither bound is set.
func (s Span) IsEmpty() bool { return s.Start == Unset && s.End == Unset }

func emptySpan() Span { return Span{Start: Unset, End: Unset} }

// Visual holds the presentation attributes of a branch.
type Visual struct {
	// OrderGroup is the horizontal bucket the branch is drawn in.
	OrderGroup int `json:"order_group"`

	// SourceOrderGroup and TargetOrderGroup are the order groups of the
	// branches this one diverged from and merged into, or Unset.
	SourceOrderGroup int `json:"source_order_group"`
	TargetOrderGroup int `json:"target_order_group"`

	TermColor uint8  `json:"term_color"`
	SVGColor  string `json:"svg_color"`

	// Column is the global lane number, or Unset for branches that own no
	// commits.
	Column int `json:"column"`
}

// Branch is a real branch, a tag, or a branch inferred from a merge commit.
type Branch struct {
	Name string `json:"name"`

	// Target is the commit the branch points to. For inferred branches it is
	// the tip that was merged in.
	Target string `json:"target"`

	// MergeTarget is the merge commit that absorbed an inferred branch.
	MergeTarget string `json:"merge_target,omitempty"`

	SourceBranch int `json:"source_branch"`
	TargetBranch int `json:"target_branch"`

	// Persistence ranks how durable the branch is; lower claims first.
	Persistence int `json:"persistence"`

	IsRemote bool `json:"is_remote,omitempty"`
	IsMerged bool `json:"is_merged,omitempty"`
	IsTag    bool `json:"is_tag,omitempty"`

	Visual Visual `json:"visual"`
	Span   Span   `json:"span"`
}

func newBranch(name, target string, seed int) Branch {
	return Branch{
		Name:         name,
		Target:       target,
		SourceBranch: Unset,
		TargetBranch: Unset,
		Visual: Visual{
			SourceOrderGroup: Unset,
			TargetOrderGroup: Unset,
			Column:           Unset,
		},
		Span: Span{Start: seed, End: Unset},
	}
}

// Graph is the result of [Build].
type Graph struct {
	// Commits lists every commit owned by a branch, newest first.
	Commits []Commit `json:"commits"`

	// Indices maps commit ids to positions in Commits. It is rebuilt when a
	// graph is decoded.
	Indices map[string]int `json:"-"`

	// AllBranches holds every branch and tag, including merged branches.
	AllBranches []Branch `json:"all_branches"`

	// Branches indexes AllBranches entries that are existing branches.
	Branches []int `json:"branches"`

	// Tags indexes AllBranches entries that are tags.
	Tags []int `json:"tags"`

	Head history.Head `json:"head"`
}

// Commit returns the commit with the given id.
func (g *Graph) Commit(oid string) (*Commit, bool) {
	i, ok := g.Indices[oid]
	if !ok {
		return nil, false
	}
	return &g.Commits[i], true
}

// Columns returns the number of lanes in use.
func (g *Graph) Columns() int {
	n := 0
	for i := range g.AllBranches {
		if c := g.AllBranches[i].Visual.Column; c+1 > n {
			n = c + 1
		}
	}
	return n
}

// Owner returns the branch owning the commit at index i.
func (g *Graph) Owner(i int) *Branch {
	if i < 0 || i >= len(g.Commits) {
		return nil
	}
	t := g.Commits[i].Trace
	if t == Unset {
		return nil
	}
	return &g.AllBranches[t]
}
