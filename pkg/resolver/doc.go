// Package resolver implements the one-pass, topological-order merge
// that turns a graph of parsed spaces into a ResolvedSpace per space —
// pulling variables across parent and dependency edges, remapping
// environment names, detecting conflicts, and enforcing the uniformity
// and shared/per-env disjointness invariants.
//
// This is the algorithmic centre of weaveconfig: invariants must hold
// simultaneously across a potentially large graph of files with
// overlapping environment namespaces, selective inclusion, and
// renaming.
package resolver
