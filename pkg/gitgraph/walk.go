package gitgraph

import "github.com/matzehuels/gitlanes/pkg/history"

// walkCommits materializes the walk into an index-based commit list. Commits
// in exclude are skipped and do not consume an index. A maxCount of zero walks
// everything.
func walkCommits(repo history.Repository, maxCount int, exclude map[string]struct{}) ([]Commit, map[string]int, error) {
	var commits []Commit
	indices := make(map[string]int)

	err := repo.Walk(func(c history.Commit) error {
		if maxCount > 0 && len(commits) >= maxCount {
			return history.ErrStopWalk
		}
		if _, skip := exclude[c.OID]; skip {
			return nil
		}
		if _, dup := indices[c.OID]; dup {
			return nil
		}
		indices[c.OID] = len(commits)
		commits = append(commits, Commit{Commit: c, Trace: Unset})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return commits, indices, nil
}

// linkChildren records every commit as a child of each of its walked parents.
func linkChildren(commits []Commit, indices map[string]int) {
	for i := range commits {
		for _, p := range commits[i].Parents {
			if pi, ok := indices[p]; ok {
				commits[pi].Children = append(commits[pi].Children, commits[i].OID)
			}
		}
	}
}
