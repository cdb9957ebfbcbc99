package pipeline

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/gitrepo"
	"github.com/matzehuels/gitlanes/pkg/history"
)

// Source is an opened repository.
type Source struct {
	Repo history.Repository

	// Label names the source in logs and hooks.
	Label string

	// Digest, when set, replaces the ref fingerprint. Snapshots use the hash
	// of their file since their commits are not content addressed.
	Digest string
}

// Open resolves opts into a repository.
func Open(opts Options) (*Source, error) {
	if opts.Snapshot != "" {
		data, err := os.ReadFile(opts.Snapshot)
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", opts.Snapshot)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read snapshot %s", opts.Snapshot)
		}
		snap, err := history.ReadSnapshot(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode snapshot %s", opts.Snapshot)
		}
		return &Source{Repo: snap, Label: opts.Snapshot, Digest: digest(data)}, nil
	}

	path := opts.RepoPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	repo, err := gitrepo.Open(path)
	if err != nil {
		return nil, err
	}
	return &Source{Repo: repo, Label: path}, nil
}
