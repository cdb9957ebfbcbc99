package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

type refState struct {
	Shallow  bool                `json:"shallow"`
	Head     history.Head        `json:"head"`
	Branches []history.BranchRef `json:"branches"`
	Tags     []history.TagRef    `json:"tags"`
	Stashes  []string            `json:"stashes"`
}

// Fingerprint hashes every ref the layout depends on. Commits are content
// addressed, so two repositories with identical refs walk identical
// histories.
func Fingerprint(repo history.Repository) (string, error) {
	var st refState
	var err error
	if st.Shallow, err = repo.IsShallow(); err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "check shallow")
	}
	if st.Head, err = repo.Head(); err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "resolve HEAD")
	}
	local, err := repo.LocalBranches()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "list branches")
	}
	remote, err := repo.RemoteBranches()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "list remote branches")
	}
	st.Branches = append(local, remote...)
	if st.Tags, err = repo.Tags(); err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "list tags")
	}
	if st.Stashes, err = repo.Stashes(); err != nil {
		return "", errors.Wrap(errors.ErrCodeRepository, err, "list stashes")
	}

	slices.SortFunc(st.Branches, func(a, b history.BranchRef) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(st.Tags, func(a, b history.TagRef) int { return strings.Compare(a.Name, b.Name) })

	data, err := json.Marshal(st)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode refs")
	}
	return digest(data), nil
}

// SettingsDigest hashes the textual settings.
func SettingsDigest(d settings.Def) string {
	data, _ := json.Marshal(d)
	return digest(data)
}

// digest is the hex SHA-256 of data.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
