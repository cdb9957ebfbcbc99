// Package gitgraph computes lane layouts for git commit graphs.
//
// Given a [history.Repository] and compiled [settings.Settings], [Build]
// decides which logical branch owns every commit, reconstructs branches that
// were deleted after being merged, and packs all branches into columns so the
// history can be drawn as parallel lanes without two overlapping branches
// sharing a lane.
//
// # Pipeline
//
// Build runs a fixed sequence of passes over an index-based commit list:
//
//  1. Walk: commits in topological order, newest first, with stash commits
//     excluded and an optional commit limit.
//  2. Link children: forward edges derived from parent edges.
//  3. Extract branches: real branches and tags, plus branches inferred from
//     merge commit summaries using the configured merge patterns.
//  4. Trace: each branch, in persistence order, claims commits along its
//     first-parent chain until it reaches a commit already owned.
//  5. Fork correction: an inferred branch merged back into a branch of the
//     same name is renamed fork/<name>.
//  6. Sources and targets: the branches each branch diverged from and merged
//     into, with their order groups.
//  7. Columns: interval packing within each order group.
//
// Finally commits no branch claimed are dropped and every index is remapped.
//
// # Indices
//
// All cross references are indices. Commit indices follow walk order, so
// index 0 is the newest commit. Optional indices (span bounds, traces,
// columns, source and target branches) use [Unset] when absent.
//
// # Merge Convention
//
// The branch merged in by a merge commit is assumed to be its last parent, as
// written by git merge and the common hosting services. Tools that record the
// incoming tip elsewhere produce misattributed inferred branches.
//
// Build is a pure computation: it performs no logging, holds no state between
// calls and never writes to the repository.
package gitgraph
