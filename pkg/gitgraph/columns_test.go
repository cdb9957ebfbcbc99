package gitgraph

import (
	"regexp"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/settings"
)

func spanned(name string, group int, start, end int) Branch {
	b := newBranch(name, "", start)
	b.Span.End = end
	b.Visual.OrderGroup = group
	return b
}

func TestAssignColumnsPacksWithoutOverlap(t *testing.T) {
	commits := make([]Commit, 10)
	bs := &settings.BranchSettings{}
	branches := []Branch{
		spanned("a", 0, 0, 3),
		spanned("b", 0, 2, 5),
		spanned("c", 0, 4, 9),
		spanned("d", 0, 6, 7),
	}

	assignColumns(commits, nil, branches, bs, settings.BranchOrder{ShortestFirst: true, Forward: true})

	want := map[string]int{"d": 0, "a": 0, "b": 1, "c": 2}
	for _, b := range branches {
		if b.Visual.Column != want[b.Name] {
			t.Errorf("%s column = %d, want %d", b.Name, b.Visual.Column, want[b.Name])
		}
	}
}

func TestAssignColumnsLongestFirst(t *testing.T) {
	commits := make([]Commit, 10)
	bs := &settings.BranchSettings{}
	branches := []Branch{
		spanned("short", 0, 1, 2),
		spanned("long", 0, 0, 9),
	}

	assignColumns(commits, nil, branches, bs, settings.BranchOrder{ShortestFirst: false, Forward: true})

	if branches[1].Visual.Column != 0 || branches[0].Visual.Column != 1 {
		t.Errorf("columns long=%d short=%d, want 0 and 1", branches[1].Visual.Column, branches[0].Visual.Column)
	}
}

func TestAssignColumnsGroupOffsets(t *testing.T) {
	commits := make([]Commit, 6)
	bs := &settings.BranchSettings{Order: []*regexp.Regexp{regexp.MustCompile(`^main$`)}}
	branches := []Branch{
		spanned("topic", 1, 0, 2),
		spanned("main", 0, 0, 5),
		spanned("main2", 0, 1, 3),
		spanned("empty", 1, Unset, Unset),
	}

	assignColumns(commits, nil, branches, bs, settings.BranchOrder{ShortestFirst: true, Forward: true})

	if branches[2].Visual.Column != 0 || branches[1].Visual.Column != 1 {
		t.Errorf("group 0 columns = %d, %d", branches[2].Visual.Column, branches[1].Visual.Column)
	}
	if branches[0].Visual.Column != 2 {
		t.Errorf("topic column = %d, want 2", branches[0].Visual.Column)
	}
	if branches[3].Visual.Column != Unset {
		t.Errorf("empty branch column = %d, want Unset", branches[3].Visual.Column)
	}
}

func TestAssignColumnsAlignRightOpensLeftColumn(t *testing.T) {
	commits := make([]Commit, 8)
	bs := &settings.BranchSettings{Order: []*regexp.Regexp{regexp.MustCompile(`^a$`)}}
	branches := []Branch{
		spanned("upper", 1, 0, 7),
		spanned("first", 0, 0, 7),
		spanned("second", 0, 2, 4),
	}
	branches[2].TargetBranch = 0
	branches[2].Visual.TargetOrderGroup = 1

	assignColumns(commits, nil, branches, bs, settings.BranchOrder{ShortestFirst: false, Forward: true})

	// Longest first places first before second; second reaches toward group
	// 1 but cannot share first's column, so a column opens on the left.
	if branches[2].Visual.Column != 0 || branches[1].Visual.Column != 1 {
		t.Errorf("columns second=%d first=%d, want 0 and 1", branches[2].Visual.Column, branches[1].Visual.Column)
	}
	if branches[0].Visual.Column != 2 {
		t.Errorf("upper column = %d, want 2", branches[0].Visual.Column)
	}
}

func TestAssignColumnsAvoidsMergeTargetColumn(t *testing.T) {
	commits, indices := linked(
		[]string{"m", "p", "f"},
		[]string{"p"},
		[]string{"f"},
	)
	commits[0].Trace = 0
	commits[1].Trace = 0
	commits[2].Trace = 1

	bs := &settings.BranchSettings{}
	branches := []Branch{
		spanned("main", 0, 0, 0),
		spanned("feature", 0, 1, 2),
	}
	branches[1].MergeTarget = "m"

	assignColumns(commits, indices, branches, bs, settings.BranchOrder{ShortestFirst: true, Forward: true})

	if branches[0].Visual.Column == branches[1].Visual.Column {
		t.Errorf("feature shares column %d with the branch it merges into", branches[0].Visual.Column)
	}
}
