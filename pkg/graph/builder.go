package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// Builder constructs a Graph from parsed space declarations: adjacency
// lists plus in-degree counts feeding Kahn's algorithm, with a DFS
// cycle check that reconstructs the offending path for the error
// message.
type Builder struct {
	nodes         map[string]*Node
	requires      map[string][]string // name -> names it must resolve after
	dependents    map[string][]string // name -> names that require it
	inDegree      map[string]int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:      make(map[string]*Node),
		requires:   make(map[string][]string),
		dependents: make(map[string][]string),
		inDegree:   make(map[string]int),
	}
}

// Build constructs the Graph from decls. spaceDirs must contain every
// decl's directory, used to resolve parent edges.
func (b *Builder) Build(decls []*spacefile.SpaceDecl, spaceDirs map[string]bool) (*Graph, *wcerror.List) {
	errs := &wcerror.List{}

	dirToName := make(map[string]string, len(decls))
	for _, d := range decls {
		dirToName[d.Path] = d.Name
	}

	b.index(decls, errs)
	if !errs.Empty() {
		return nil, errs
	}

	b.wireParents(decls, spaceDirs, dirToName, errs)
	b.wireDependencies(decls, errs)
	if !errs.Empty() {
		return nil, errs
	}

	if cycleErr := b.detectCycles(); cycleErr != nil {
		errs.Add(cycleErr)
		return nil, errs
	}

	order, levelErr := b.computeOrder()
	if levelErr != nil {
		errs.Add(levelErr)
		return nil, errs
	}

	for i, name := range order {
		b.nodes[name].Order = i
	}

	return &Graph{Nodes: b.nodes, Order: order}, errs
}

// index registers every space by name, rejecting duplicates.
func (b *Builder) index(decls []*spacefile.SpaceDecl, errs *wcerror.List) {
	for _, d := range decls {
		if _, exists := b.nodes[d.Name]; exists {
			errs.Add(wcerror.New(wcerror.KindGraph, wcerror.CodeDuplicateSpace, d.Path,
				fmt.Sprintf("duplicate space name %q", d.Name)))
			continue
		}
		b.nodes[d.Name] = &Node{Decl: d}
		b.requires[d.Name] = nil
		b.dependents[d.Name] = nil
		b.inDegree[d.Name] = 0
	}
}

// wireParents assigns each space's parent by directory containment and
// adds the corresponding edge.
func (b *Builder) wireParents(decls []*spacefile.SpaceDecl, spaceDirs map[string]bool, dirToName map[string]string, errs *wcerror.List) {
	for _, d := range decls {
		node, ok := b.nodes[d.Name]
		if !ok {
			continue // duplicate, already reported
		}
		parentDir := discover.ParentSpace(d.Path, spaceDirs)
		if parentDir == "" {
			continue // root space
		}
		parentName, ok := dirToName[parentDir]
		if !ok {
			continue // parent dir had a duplicate-name collision, already reported
		}
		node.Parent = parentName
		b.addEdge(parentName, d.Name)
	}
}

// wireDependencies resolves each space's declared dependency names
// against the global index.
func (b *Builder) wireDependencies(decls []*spacefile.SpaceDecl, errs *wcerror.List) {
	for _, d := range decls {
		node, ok := b.nodes[d.Name]
		if !ok {
			continue
		}
		for _, depName := range d.DependencyNames() {
			if depName == d.Name {
				errs.Add(wcerror.New(wcerror.KindGraph, wcerror.CodeDependencyCycle, d.Path,
					fmt.Sprintf("space %q depends on itself", d.Name)))
				continue
			}
			if _, exists := b.nodes[depName]; !exists {
				errs.Add(wcerror.New(wcerror.KindGraph, wcerror.CodeUnknownDependency, d.Path,
					fmt.Sprintf("space %q depends on unknown space %q", d.Name, depName)))
				continue
			}
			node.Dependencies = append(node.Dependencies, depName)
			b.addEdge(depName, d.Name)
		}
	}
}

// addEdge records that `dependent` must resolve after `source`.
func (b *Builder) addEdge(source, dependent string) {
	b.requires[dependent] = append(b.requires[dependent], source)
	b.dependents[source] = append(b.dependents[source], dependent)
	b.inDegree[dependent]++
}

// detectCycles runs a DFS over the requires graph, reconstructing the
// offending path for the error message.
func (b *Builder) detectCycles() *wcerror.Error {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(name string, path []string) []string
	visit = func(name string, path []string) []string {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)

		for _, dep := range b.requires[name] {
			if !visited[dep] {
				if cycle := visit(dep, path); cycle != nil {
					return cycle
				}
			} else if onStack[dep] {
				start := indexOf(path, dep)
				if start >= 0 {
					return append(append([]string{}, path[start:]...), dep)
				}
			}
		}

		onStack[name] = false
		return nil
	}

	names := b.sortedNodeNames()
	for _, name := range names {
		if !visited[name] {
			if cycle := visit(name, nil); cycle != nil {
				return wcerror.New(wcerror.KindGraph, wcerror.CodeDependencyCycle, "",
					fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
			}
		}
	}
	return nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// computeOrder runs Kahn's algorithm level by level, breaking ties
// within a level by directory path so output is reproducible regardless
// of discovery's filesystem enumeration order.
func (b *Builder) computeOrder() ([]string, *wcerror.Error) {
	inDegree := make(map[string]int, len(b.inDegree))
	for k, v := range b.inDegree {
		inDegree[k] = v
	}

	var level []string
	for name, d := range inDegree {
		if d == 0 {
			level = append(level, name)
		}
	}

	order := make([]string, 0, len(b.nodes))
	for len(level) > 0 {
		b.sortByDir(level)
		order = append(order, level...)

		var next []string
		for _, name := range level {
			for _, dependent := range b.dependents[name] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		level = next
	}

	if len(order) != len(b.nodes) {
		return nil, wcerror.New(wcerror.KindGraph, wcerror.CodeDependencyCycle, "",
			"failed to produce a total order; a cycle survived detection")
	}
	return order, nil
}

func (b *Builder) sortByDir(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return b.nodes[names[i]].Decl.Path < b.nodes[names[j]].Decl.Path
	})
}

func (b *Builder) sortedNodeNames() []string {
	names := make([]string, 0, len(b.nodes))
	for name := range b.nodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return b.nodes[names[i]].Decl.Path < b.nodes[names[j]].Decl.Path
	})
	return names
}
