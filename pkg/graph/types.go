package graph

import "github.com/weaveconfig/weaveconfig/pkg/spacefile"

// Node is one space positioned in the resolution graph: its own
// declaration plus resolved parent/dependency edges by name.
type Node struct {
	// Decl is the space's parsed, immutable marker.
	Decl *spacefile.SpaceDecl

	// Parent is the owning space's name, or "" for the root space.
	Parent string

	// Dependencies is Decl's dependency list, resolved and validated
	// against the global name index.
	Dependencies []string

	// Order is this node's position in the graph's topological order.
	Order int
}

// Graph is the built forest + multigraph over every discovered space,
// ready for the resolver to walk in topological order.
type Graph struct {
	// Nodes maps space name to Node.
	Nodes map[string]*Node

	// Order lists space names in topological order: every space after
	// its parent and all its dependencies, directory-path order breaking
	// ties among incomparable spaces.
	Order []string
}

// Children returns the names of spaces whose Parent is name, in
// Order-stable order.
func (g *Graph) Children(name string) []string {
	var out []string
	for _, n := range g.Order {
		if g.Nodes[n].Parent == name {
			out = append(out, n)
		}
	}
	return out
}
