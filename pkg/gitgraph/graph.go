package gitgraph

import (
	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// Build lays out the history of repo. A nil s uses [settings.Default].
//
// Shallow repositories are rejected with [errors.ErrCodeUnsupportedRepository]
// before anything else is read. Read failures are wrapped with
// [errors.ErrCodeRepository]. There is no partial result: either the full
// graph or an error is returned.
func Build(repo history.Repository, s *settings.Settings) (*Graph, error) {
	if s == nil {
		s = settings.Default()
	}

	shallow, err := repo.IsShallow()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "check shallow clone")
	}
	if shallow {
		return nil, errors.New(errors.ErrCodeUnsupportedRepository, "shallow clones are not supported; fetch the full history with git fetch --unshallow")
	}

	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "resolve HEAD")
	}

	stashes, err := repo.Stashes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "list stashes")
	}
	exclude := make(map[string]struct{}, len(stashes))
	for _, oid := range stashes {
		exclude[oid] = struct{}{}
	}

	commits, indices, err := walkCommits(repo, s.MaxCount, exclude)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "walk commits")
	}
	linkChildren(commits, indices)

	branches, err := extractBranches(repo, commits, indices, s)
	if err != nil {
		return nil, err
	}
	branches = assignBranches(commits, indices, branches)

	correctForkMerges(commits, indices, branches, &extractor{bs: &s.Branches})
	assignSourcesTargets(commits, indices, branches)
	assignColumns(commits, indices, branches, &s.Branches, s.BranchOrder)

	return assemble(commits, branches, head), nil
}

// assemble drops unowned commits, rebuilds the index and moves span bounds
// that pointed at dropped commits to the nearest surviving commit inside the
// span.
func assemble(commits []Commit, branches []Branch, head history.Head) *Graph {
	kept, remap := compact(commits, func(_ int, c *Commit) bool {
		return c.Trace != Unset
	})

	indices := make(map[string]int, len(kept))
	for i := range kept {
		indices[kept[i].OID] = i
	}

	for i := range branches {
		b := &branches[i]
		if b.Span.Start != Unset {
			b.Span.Start = nextKept(remap, b.Span.Start, +1)
		}
		if b.Span.End != Unset {
			b.Span.End = nextKept(remap, b.Span.End, -1)
		}
		if b.Span.Start != Unset && b.Span.End != Unset && b.Span.Start > b.Span.End {
			b.Span = emptySpan()
			b.Visual.Column = Unset
		}
	}

	g := &Graph{
		Commits:     kept,
		Indices:     indices,
		AllBranches: branches,
		Branches:    []int{},
		Tags:        []int{},
		Head:        head,
	}
	for i := range branches {
		b := &branches[i]
		switch {
		case b.IsMerged:
		case b.IsTag:
			g.Tags = append(g.Tags, i)
		default:
			g.Branches = append(g.Branches, i)
		}
	}
	return g
}

// nextKept moves from old index i in direction step until it reaches a kept
// commit and returns its new index, or Unset when it runs off the list.
func nextKept(remap []int, i, step int) int {
	for ; i >= 0 && i < len(remap); i += step {
		if remap[i] != Unset {
			return remap[i]
		}
	}
	return Unset
}
