package gitrepo

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitgraph"
	"github.com/matzehuels/gitlanes/pkg/history"
)

var epoch = time.Date(2025, 1, 29, 9, 0, 0, 0, time.UTC)

type testRepo struct {
	t    *testing.T
	r    *gogit.Repository
	tree plumbing.Hash
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	r, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)

	obj := r.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj))
	tree, err := r.Storer.SetEncodedObject(obj)
	require.NoError(t, err)

	return &testRepo{t: t, r: r, tree: tree}
}

func (tr *testRepo) commit(msg string, minute int, parents ...plumbing.Hash) plumbing.Hash {
	tr.t.Helper()
	sig := object.Signature{Name: "Ada", Email: "ada@example.com", When: epoch.Add(time.Duration(minute) * time.Minute)}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     tr.tree,
		ParentHashes: parents,
	}
	obj := tr.r.Storer.NewEncodedObject()
	require.NoError(tr.t, c.Encode(obj))
	h, err := tr.r.Storer.SetEncodedObject(obj)
	require.NoError(tr.t, err)
	return h
}

func (tr *testRepo) ref(name string, h plumbing.Hash) {
	tr.t.Helper()
	require.NoError(tr.t, tr.r.Storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName(name), h)))
}

func (tr *testRepo) checkout(branch string) {
	tr.t.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	require.NoError(tr.t, tr.r.Storer.SetReference(ref))
}

func TestWalkOrder(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root\n", 0)
	f1 := tr.commit("feature\n", 1, c0)
	c1 := tr.commit("main\n", 2, c0)
	m := tr.commit("Merge branch 'feature'\n\nLong description.\n", 3, c1, f1)
	tr.ref("refs/heads/main", m)
	tr.checkout("main")

	var got []history.Commit
	require.NoError(t, New(tr.r).Walk(func(c history.Commit) error {
		got = append(got, c)
		return nil
	}))

	require.Len(t, got, 4)
	assert.Equal(t, m.String(), got[0].OID)
	assert.Equal(t, c1.String(), got[1].OID)
	assert.Equal(t, f1.String(), got[2].OID)
	assert.Equal(t, c0.String(), got[3].OID)
	assert.Equal(t, []string{c1.String(), f1.String()}, got[0].Parents)
	assert.Equal(t, "Merge branch 'feature'", got[0].Summary)
	assert.Equal(t, "ada@example.com", got[0].Author.Email)
}

func TestWalkStops(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	c1 := tr.commit("one", 1, c0)
	tr.ref("refs/heads/main", c1)

	n := 0
	err := New(tr.r).Walk(func(history.Commit) error {
		n++
		return history.ErrStopWalk
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWalkSkipsStash(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	c1 := tr.commit("main", 1, c0)
	index := tr.commit("index on main: work", 2, c1)
	untracked := tr.commit("untracked files on main: work", 3)
	wip := tr.commit("WIP on main: work", 4, c1, index, untracked)
	tr.ref("refs/heads/main", c1)
	tr.ref("refs/stash", wip)

	var got []string
	require.NoError(t, New(tr.r).Walk(func(c history.Commit) error {
		got = append(got, c.OID)
		return nil
	}))
	assert.Equal(t, []string{c1.String(), c0.String()}, got)

	stashes, err := New(tr.r).Stashes()
	require.NoError(t, err)
	assert.Equal(t, []string{wip.String()}, stashes)
}

func TestRefs(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	c1 := tr.commit("one", 1, c0)
	tr.ref("refs/heads/main", c1)
	tr.ref("refs/heads/dev", c0)
	tr.ref("refs/remotes/origin/main", c0)
	require.NoError(t, tr.r.Storer.SetReference(plumbing.NewSymbolicReference(
		"refs/remotes/origin/HEAD", "refs/remotes/origin/main")))

	_, err := tr.r.CreateTag("v1.0", c1, &gogit.CreateTagOptions{
		Tagger:  &object.Signature{Name: "Ada", Email: "ada@example.com", When: epoch},
		Message: "release 1.0",
	})
	require.NoError(t, err)
	tr.ref("refs/tags/light", c0)

	repo := New(tr.r)

	local, err := repo.LocalBranches()
	require.NoError(t, err)
	assert.ElementsMatch(t, []history.BranchRef{
		{Name: "main", Target: c1.String()},
		{Name: "dev", Target: c0.String()},
	}, local)

	remote, err := repo.RemoteBranches()
	require.NoError(t, err)
	assert.ElementsMatch(t, []history.BranchRef{
		{Name: "origin/main", Target: c0.String(), IsRemote: true},
		{Name: "origin/HEAD", IsRemote: true, IsSymbolic: true},
	}, remote)

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []history.TagRef{
		{Name: "v1.0", Target: c1.String()},
		{Name: "light", Target: c0.String()},
	}, tags)
}

func TestHead(t *testing.T) {
	tr := newTestRepo(t)
	repo := New(tr.r)

	h, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, history.HeadUnborn, h.Kind)
	assert.Equal(t, "master", h.Name)

	c0 := tr.commit("root", 0)
	tr.ref("refs/heads/main", c0)
	tr.checkout("main")

	h, err = repo.Head()
	require.NoError(t, err)
	assert.Equal(t, history.Head{OID: c0.String(), Name: "main", Kind: history.HeadBranch}, h)
	assert.True(t, h.IsBranch())

	require.NoError(t, tr.r.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, c0)))
	h, err = repo.Head()
	require.NoError(t, err)
	assert.Equal(t, history.HeadDetached, h.Kind)
	assert.Equal(t, c0.String(), h.OID)
}

func TestStashes(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	tr.ref("refs/heads/main", c0)
	repo := New(tr.r)

	stashes, err := repo.Stashes()
	require.NoError(t, err)
	assert.Empty(t, stashes)

	index := tr.commit("index on main", 1, c0)
	wip := tr.commit("WIP on main", 2, c0, index)
	tr.ref("refs/stash", wip)

	stashes, err = repo.Stashes()
	require.NoError(t, err)
	assert.Equal(t, []string{wip.String()}, stashes)
}

func TestShallow(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	tr.ref("refs/heads/main", c0)
	repo := New(tr.r)

	shallow, err := repo.IsShallow()
	require.NoError(t, err)
	assert.False(t, shallow)

	require.NoError(t, tr.r.Storer.SetShallow([]plumbing.Hash{c0}))
	shallow, err = repo.IsShallow()
	require.NoError(t, err)
	assert.True(t, shallow)

	_, err = gitgraph.Build(repo, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupportedRepository), "got %v", err)
}

func TestBuildFromWorktree(t *testing.T) {
	r, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)

	var last plumbing.Hash
	for i, msg := range []string{"initial", "second", "third"} {
		last, err = w.Commit(msg, &gogit.CommitOptions{
			Author:            &object.Signature{Name: "Ada", Email: "ada@example.com", When: epoch.Add(time.Duration(i) * time.Minute)},
			AllowEmptyCommits: true,
		})
		require.NoError(t, err)
	}

	g, err := gitgraph.Build(New(r), nil)
	require.NoError(t, err)
	require.Len(t, g.Commits, 3)
	assert.Equal(t, last.String(), g.Commits[0].OID)
	assert.Equal(t, "master", g.Head.Name)
	assert.True(t, g.Head.IsBranch())

	require.Len(t, g.Branches, 1)
	master := g.AllBranches[g.Branches[0]]
	assert.Equal(t, "master", master.Name)
	assert.Equal(t, gitgraph.Span{Start: 0, End: 2}, master.Span)
	assert.Equal(t, 0, master.Visual.Column)
}

func TestBuildStashAndMerge(t *testing.T) {
	tr := newTestRepo(t)
	c0 := tr.commit("root", 0)
	f1 := tr.commit("feature", 1, c0)
	c1 := tr.commit("main", 2, c0)
	m := tr.commit("Merge branch 'feature/x' into main", 3, c1, f1)
	index := tr.commit("index on main", 4, m)
	wip := tr.commit("WIP on main", 5, m, index)
	tr.ref("refs/heads/main", m)
	tr.ref("refs/stash", wip)
	tr.checkout("main")

	g, err := gitgraph.Build(New(tr.r), nil)
	require.NoError(t, err)

	assert.Len(t, g.Commits, 4)
	_, hasWIP := g.Indices[wip.String()]
	assert.False(t, hasWIP)
	merge, ok := g.Commit(m.String())
	require.True(t, ok)
	assert.Empty(t, merge.Children, "stash commits must not become children of HEAD")

	c, ok := g.Commit(f1.String())
	require.True(t, ok)
	owner := g.AllBranches[c.Trace]
	assert.Equal(t, "feature/x", owner.Name)
	assert.True(t, owner.IsMerged)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
}
