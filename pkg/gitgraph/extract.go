package gitgraph

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/settings"
)

// unknownBranch names inferred branches whose merge summary matches no
// pattern.
const unknownBranch = "unknown"

// extractor collects branches and threads the colour rotation counter.
type extractor struct {
	bs      *settings.BranchSettings
	counter int
}

// extractBranches collects real branches, branches inferred from merge
// commits and tags, in claim priority order. Tags always come last.
func extractBranches(repo history.Repository, commits []Commit, indices map[string]int, s *settings.Settings) ([]Branch, error) {
	refs, err := repo.LocalBranches()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "list local branches")
	}
	if s.IncludeRemote {
		remote, err := repo.RemoteBranches()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRepository, err, "list remote branches")
		}
		refs = append(refs, remote...)
	}

	x := &extractor{bs: &s.Branches}
	var branches []Branch

	for _, ref := range refs {
		if ref.IsSymbolic {
			continue
		}
		x.counter++
		seed := Unset
		if i, ok := indices[ref.Target]; ok {
			seed = i
		}
		b := x.branch(ref.Name, ref.Target, seed)
		b.IsRemote = ref.IsRemote
		branches = append(branches, b)
	}

	for i := range commits {
		c := &commits[i]
		if !c.IsMerge() {
			continue
		}
		x.counter++
		name, ok := parseMergeSummary(c.SummaryLine(), s.MergePatterns)
		if !ok {
			name = unknownBranch
		}
		b := x.branch(name, c.Parents[len(c.Parents)-1], i+1)
		b.MergeTarget = c.OID
		b.IsMerged = true
		branches = append(branches, b)
	}

	slices.SortStableFunc(branches, func(a, b Branch) int {
		if a.Persistence != b.Persistence {
			return cmp.Compare(a.Persistence, b.Persistence)
		}
		return cmp.Compare(boolRank(a.IsMerged), boolRank(b.IsMerged))
	})

	tags, err := repo.Tags()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRepository, err, "list tags")
	}
	for _, tag := range tags {
		i, ok := indices[tag.Target]
		if !ok {
			continue
		}
		x.counter++
		b := x.branch(tagPrefix+tag.Name, tag.Target, i)
		b.Persistence = len(x.bs.Persistence) + 1
		b.IsTag = true
		branches = append(branches, b)
	}

	return branches, nil
}

func (x *extractor) branch(name, target string, seed int) Branch {
	b := newBranch(name, target, seed)
	b.Persistence = branchOrder(name, x.bs.Persistence)
	x.style(&b, x.counter)
	return b
}

// style assigns the order group and colours derived from the branch name.
func (x *extractor) style(b *Branch, counter int) {
	b.Visual.OrderGroup = branchOrder(b.Name, x.bs.Order)
	b.Visual.TermColor = branchColor(b.Name, x.bs.TerminalColors, x.bs.TerminalColorsUnknown, counter)
	b.Visual.SVGColor = branchColor(b.Name, x.bs.SVGColors, x.bs.SVGColorsUnknown, counter)
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}

// matchName tests a branch name, ignoring an origin/ prefix.
func matchName(re *regexp.Regexp, name string) bool {
	return re.MatchString(strings.TrimPrefix(name, originPrefix))
}

// branchOrder returns the index of the first pattern matching name, or
// len(patterns) when none match.
func branchOrder(name string, patterns []*regexp.Regexp) int {
	for i, re := range patterns {
		if matchName(re, name) {
			return i
		}
	}
	return len(patterns)
}

// branchColor picks from the palette of the first matching rule, rotating by
// counter, and falls back to the unknown palette.
func branchColor[T any](name string, rules []settings.ColorRule[T], unknown []T, counter int) T {
	for _, r := range rules {
		if matchName(r.Pattern, name) {
			return r.Colors[counter%len(r.Colors)]
		}
	}
	return unknown[counter%len(unknown)]
}

// parseMergeSummary extracts the merged branch name using the first pattern
// that matches.
func parseMergeSummary(summary string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(summary)
		if len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}
