package graph

import (
	"testing"

	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
)

func decl(name, path string, deps ...string) *spacefile.SpaceDecl {
	var d []spacefile.Dependency
	for _, dep := range deps {
		d = append(d, spacefile.Dependency{Name: dep})
	}
	return &spacefile.SpaceDecl{Name: name, Path: path, Dependencies: d}
}

func TestBuildOrdersParentBeforeChild(t *testing.T) {
	root := decl("root", "/repo")
	child := decl("child", "/repo/child")

	spaceDirs := map[string]bool{"/repo": true, "/repo/child": true}

	g, errs := NewBuilder().Build([]*spacefile.SpaceDecl{root, child}, spaceDirs)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}
	if g.Nodes["child"].Parent != "root" {
		t.Fatalf("expected child's parent to be root, got %q", g.Nodes["child"].Parent)
	}
	if g.Nodes["root"].Order >= g.Nodes["child"].Order {
		t.Fatalf("expected root before child in order, got root=%d child=%d",
			g.Nodes["root"].Order, g.Nodes["child"].Order)
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	a := decl("a", "/repo/a", "b")
	b := decl("b", "/repo/b", "a")

	spaceDirs := map[string]bool{"/repo/a": true, "/repo/b": true}

	_, errs := NewBuilder().Build([]*spacefile.SpaceDecl{a, b}, spaceDirs)
	if errs.Empty() {
		t.Fatal("expected a cycle error")
	}
}

func TestBuildRejectsUnknownDependency(t *testing.T) {
	a := decl("a", "/repo/a", "missing")
	spaceDirs := map[string]bool{"/repo/a": true}

	_, errs := NewBuilder().Build([]*spacefile.SpaceDecl{a}, spaceDirs)
	if errs.Empty() {
		t.Fatal("expected an unknown-dependency error")
	}
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	a := decl("dup", "/repo/a")
	b := decl("dup", "/repo/b")
	spaceDirs := map[string]bool{"/repo/a": true, "/repo/b": true}

	_, errs := NewBuilder().Build([]*spacefile.SpaceDecl{a, b}, spaceDirs)
	if errs.Empty() {
		t.Fatal("expected a duplicate-name error")
	}
}
