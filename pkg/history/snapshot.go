package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot is a complete, serializable copy of everything a [Repository]
// exposes. It implements Repository itself, so a snapshot captured from a real
// repository can be laid out again without git.
//
// Commits may be stored in any order; Walk sorts them with [TopoSort].
type Snapshot struct {
	Shallow      bool        `json:"shallow,omitempty"`
	HeadRef      Head        `json:"head"`
	Commits      []Commit    `json:"commits"`
	Branches     []BranchRef `json:"branches,omitempty"`
	TagRefs      []TagRef    `json:"tags,omitempty"`
	StashCommits []string    `json:"stashes,omitempty"`
}

// Capture copies repo into a Snapshot. Both local and remote branches are
// recorded.
func Capture(repo Repository) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	if s.Shallow, err = repo.IsShallow(); err != nil {
		return nil, fmt.Errorf("shallow check: %w", err)
	}
	if s.HeadRef, err = repo.Head(); err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	if err := repo.Walk(func(c Commit) error {
		s.Commits = append(s.Commits, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	local, err := repo.LocalBranches()
	if err != nil {
		return nil, fmt.Errorf("local branches: %w", err)
	}
	remote, err := repo.RemoteBranches()
	if err != nil {
		return nil, fmt.Errorf("remote branches: %w", err)
	}
	s.Branches = append(local, remote...)
	if s.TagRefs, err = repo.Tags(); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	if s.StashCommits, err = repo.Stashes(); err != nil {
		return nil, fmt.Errorf("stashes: %w", err)
	}
	return s, nil
}

func (s *Snapshot) IsShallow() (bool, error) { return s.Shallow, nil }

func (s *Snapshot) Head() (Head, error) { return s.HeadRef, nil }

func (s *Snapshot) Walk(fn WalkFunc) error {
	for _, c := range TopoSort(s.Commits) {
		if err := fn(c); err != nil {
			if err == ErrStopWalk {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *Snapshot) LocalBranches() ([]BranchRef, error) {
	return s.filterBranches(false), nil
}

func (s *Snapshot) RemoteBranches() ([]BranchRef, error) {
	return s.filterBranches(true), nil
}

func (s *Snapshot) filterBranches(remote bool) []BranchRef {
	var out []BranchRef
	for _, b := range s.Branches {
		if b.IsRemote == remote {
			out = append(out, b)
		}
	}
	return out
}

func (s *Snapshot) Tags() ([]TagRef, error) { return s.TagRefs, nil }

func (s *Snapshot) Stashes() ([]string, error) { return s.StashCommits, nil }

// ReadSnapshot decodes a JSON snapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// ReadSnapshotFile decodes a JSON snapshot from path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

var _ Repository = (*Snapshot)(nil)
