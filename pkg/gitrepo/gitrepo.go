// Package gitrepo reads git repositories through go-git and exposes them as
// a [history.Repository].
//
// The walk covers every commit reachable from any reference under refs/,
// including remote branches and tags but not the stash, and is emitted in
// topological order with newer committer time first. Annotated tags are
// peeled to the commit they name.
package gitrepo

import (
	stderrors "errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
)

const stashRef = plumbing.ReferenceName("refs/stash")

// Repo adapts a go-git repository.
type Repo struct {
	r *gogit.Repository
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no git repository at %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "open %s", path)
	}
	return New(r), nil
}

// New wraps an already opened repository.
func New(r *gogit.Repository) *Repo {
	return &Repo{r: r}
}

// IsShallow reports whether the repository has shallow roots.
func (g *Repo) IsShallow() (bool, error) {
	roots, err := g.r.Storer.Shallow()
	if err != nil {
		return false, fmt.Errorf("read shallow file: %w", err)
	}
	return len(roots) > 0, nil
}

// Head resolves HEAD. A HEAD pointing at a branch without commits is
// reported as [history.HeadUnborn].
func (g *Repo) Head() (history.Head, error) {
	ref, err := g.r.Head()
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		sym, symErr := g.r.Reference(plumbing.HEAD, false)
		if symErr != nil {
			return history.Head{Kind: history.HeadUnborn}, nil
		}
		return history.Head{Name: sym.Target().Short(), Kind: history.HeadUnborn}, nil
	}
	if err != nil {
		return history.Head{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	h := history.Head{OID: ref.Hash().String(), Name: ref.Name().Short()}
	switch {
	case ref.Name().IsBranch():
		h.Kind = history.HeadBranch
	case ref.Name().IsTag():
		h.Kind = history.HeadTag
		if c, err := g.peel(ref.Hash()); err == nil {
			h.OID = c.String()
		}
	default:
		h.Kind = history.HeadDetached
		h.Name = plumbing.HEAD.String()
	}
	return h, nil
}

// Walk visits every commit reachable from a reference.
func (g *Repo) Walk(fn history.WalkFunc) error {
	tips, err := g.tips()
	if err != nil {
		return err
	}

	var commits []history.Commit
	seen := make(map[plumbing.Hash]struct{})
	queue := tips
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}

		c, err := g.r.CommitObject(h)
		if err != nil {
			return fmt.Errorf("load commit %s: %w", h, err)
		}
		commits = append(commits, convert(c))
		queue = append(queue, c.ParentHashes...)
	}

	for _, c := range history.TopoSort(commits) {
		if err := fn(c); err != nil {
			if stderrors.Is(err, history.ErrStopWalk) {
				return nil
			}
			return err
		}
	}
	return nil
}

// tips returns the commits all references under refs/ point to. The stash
// is left out: its index and untracked-files commits belong to no branch.
func (g *Repo) tips() ([]plumbing.Hash, error) {
	refs, err := g.r.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	var tips []plumbing.Hash
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !strings.HasPrefix(ref.Name().String(), "refs/") {
			return nil
		}
		if ref.Name() == stashRef {
			return nil
		}
		c, err := g.peel(ref.Hash())
		if err != nil {
			return nil
		}
		tips = append(tips, c)
		return nil
	})
	return tips, err
}

// peel follows annotated tags until it reaches a commit.
func (g *Repo) peel(h plumbing.Hash) (plumbing.Hash, error) {
	for {
		tag, err := g.r.TagObject(h)
		if stderrors.Is(err, plumbing.ErrObjectNotFound) {
			break
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		h = tag.Target
		if tag.TargetType != plumbing.TagObject {
			break
		}
	}
	if _, err := g.r.CommitObject(h); err != nil {
		return plumbing.ZeroHash, err
	}
	return h, nil
}

func convert(c *object.Commit) history.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	summary, _, _ := strings.Cut(c.Message, "\n")
	return history.Commit{
		OID:       c.Hash.String(),
		Parents:   parents,
		Message:   c.Message,
		Summary:   strings.TrimSpace(summary),
		Author:    signature(c.Author),
		Committer: signature(c.Committer),
	}
}

func signature(s object.Signature) history.Signature {
	return history.Signature{Name: s.Name, Email: s.Email, When: s.When}
}

// LocalBranches lists refs/heads.
func (g *Repo) LocalBranches() ([]history.BranchRef, error) {
	iter, err := g.r.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	var out []history.BranchRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		out = append(out, branchRef(ref, false))
		return nil
	})
	return out, err
}

// RemoteBranches lists refs/remotes. Symbolic refs such as origin/HEAD are
// included and flagged.
func (g *Repo) RemoteBranches() ([]history.BranchRef, error) {
	refs, err := g.r.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	var out []history.BranchRef
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsRemote() {
			out = append(out, branchRef(ref, true))
		}
		return nil
	})
	return out, err
}

func branchRef(ref *plumbing.Reference, remote bool) history.BranchRef {
	b := history.BranchRef{Name: ref.Name().Short(), IsRemote: remote}
	if ref.Type() == plumbing.SymbolicReference {
		b.IsSymbolic = true
		return b
	}
	b.Target = ref.Hash().String()
	return b
}

// Tags lists refs/tags peeled to commits. Tags naming other objects are
// skipped.
func (g *Repo) Tags() ([]history.TagRef, error) {
	iter, err := g.r.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	var out []history.TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		c, err := g.peel(ref.Hash())
		if err != nil {
			return nil
		}
		out = append(out, history.TagRef{Name: ref.Name().Short(), Target: c.String()})
		return nil
	})
	return out, err
}

// Stashes returns the commit refs/stash points to, if any.
func (g *Repo) Stashes() ([]string, error) {
	ref, err := g.r.Reference(stashRef, true)
	if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve stash: %w", err)
	}
	return []string{ref.Hash().String()}, nil
}

var _ history.Repository = (*Repo)(nil)
