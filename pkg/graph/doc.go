// Package graph builds the parent forest and dependency multigraph
// across all discovered spaces, detects cycles and unknown references,
// and produces a deterministic topological order for the resolver:
// every space appears after all its dependencies and after its parent,
// with directory-path order as a deterministic tiebreaker.
package graph
