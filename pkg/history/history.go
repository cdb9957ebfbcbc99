// Package history defines the read-only repository boundary consumed by the
// layout engine.
//
// A [Repository] exposes exactly what the commit-graph layout needs: a
// topologically ordered walk of every commit reachable from any ref, the
// branch and tag refs, the stash commits to hide, the current HEAD and whether
// the clone is shallow. The engine never writes through it.
//
// Two implementations exist: pkg/gitrepo reads a real repository through
// go-git, and [Snapshot] is a serializable in-memory repository used by tests,
// fixtures and the --snapshot CLI flag.
package history

import (
	"errors"
	"strings"
	"time"
)

// ErrStopWalk may be returned from a [WalkFunc] to end a walk early without
// reporting an error.
var ErrStopWalk = errors.New("stop walk")

// Signature identifies an author or committer at a point in time.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// Commit is one commit as yielded by a walk. Parent order is significant: the
// first parent is the mainline.
type Commit struct {
	OID       string    `json:"oid"`
	Parents   []string  `json:"parents,omitempty"`
	Message   string    `json:"message"`
	Summary   string    `json:"summary,omitempty"`
	Author    Signature `json:"author"`
	Committer Signature `json:"committer"`
}

// SummaryLine returns Summary, or the first line of Message when Summary is
// empty.
func (c Commit) SummaryLine() string {
	if c.Summary != "" {
		return c.Summary
	}
	line, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(line)
}

// BranchRef is a local or remote branch reference. Name is the short form
// ("main", "origin/main").
type BranchRef struct {
	Name       string `json:"name"`
	Target     string `json:"target"`
	IsRemote   bool   `json:"is_remote,omitempty"`
	IsSymbolic bool   `json:"is_symbolic,omitempty"`
}

// TagRef is a tag reference already peeled to the commit it names.
type TagRef struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// HeadKind tells what HEAD resolves through.
type HeadKind string

const (
	HeadBranch   HeadKind = "branch"
	HeadTag      HeadKind = "tag"
	HeadDetached HeadKind = "detached"
	HeadUnborn   HeadKind = "unborn"
)

// Head is the resolved current HEAD.
type Head struct {
	OID  string   `json:"oid"`
	Name string   `json:"name"`
	Kind HeadKind `json:"kind"`
}

// IsBranch reports whether HEAD points at a branch.
func (h Head) IsBranch() bool { return h.Kind == HeadBranch }

// WalkFunc receives commits in walk order. Returning [ErrStopWalk] ends the
// walk cleanly; any other error aborts it.
type WalkFunc func(Commit) error

// Repository is the read-only view of a git repository used by the engine.
//
// Walk must visit every commit reachable from any ref exactly once, in
// topological order (children before parents) with newer committer time
// first among commits that are free to be emitted.
type Repository interface {
	IsShallow() (bool, error)
	Head() (Head, error)
	Walk(fn WalkFunc) error
	LocalBranches() ([]BranchRef, error)
	RemoteBranches() ([]BranchRef, error)
	Tags() ([]TagRef, error)
	Stashes() ([]string, error)
}

// ShortID returns the first seven characters of an object id.
func ShortID(oid string) string {
	if len(oid) <= 7 {
		return oid
	}
	return oid[:7]
}
