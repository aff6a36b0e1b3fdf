package resolver

import (
	"testing"

	"github.com/weaveconfig/weaveconfig/pkg/graph"
	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

func parseObj(t *testing.T, src string) *jsonc.Object {
	t.Helper()
	v, err := jsonc.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if v.Kind != jsonc.KindObject {
		t.Fatalf("expected object, got kind %v", v.Kind)
	}
	return v.Object
}

func mustGet(t *testing.T, obj *jsonc.Object, path string) jsonc.Value {
	t.Helper()
	v, ok := obj.Get(path)
	if !ok {
		t.Fatalf("missing key %q", path)
	}
	return v
}

// buildGraph wires a flat set of nodes into a graph.Graph with Order
// equal to the given slice — the tests construct already-topologically
// sorted inputs directly rather than exercising pkg/graph here.
func buildGraph(nodes map[string]*graph.Node, order []string) *graph.Graph {
	return &graph.Graph{Nodes: nodes, Order: order}
}

// TestResolveParentChildInheritance verifies a root's shared variable
// reaches a child's per-environment buckets alongside the child's own
// per-environment variables.
func TestResolveParentChildInheritance(t *testing.T) {
	root := &spacefile.SpaceDecl{Name: "root", Path: "/repo", Environments: []string{"dev", "prod"}}
	child := &spacefile.SpaceDecl{Name: "child", Path: "/repo/child", Environments: []string{"dev", "prod"}}

	g := buildGraph(map[string]*graph.Node{
		"root":  {Decl: root},
		"child": {Decl: child, Parent: "root"},
	}, []string{"root", "child"})

	inputs := map[string]*SpaceInput{
		"root": {Shared: parseObj(t, `{"region":"us"}`), SharedFile: "/repo/_env.jsonc"},
		"child": {
			PerEnv:     map[string]*jsonc.Object{"dev": parseObj(t, `{"port":3000}`), "prod": parseObj(t, `{"port":80}`)},
			PerEnvFile: map[string]string{"dev": "/repo/child/_dev.env.jsonc", "prod": "/repo/child/_prod.env.jsonc"},
		},
	}

	tree, errs := New(Features{}).Resolve(g, inputs)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}

	dev := tree.Spaces["child"].PerEnvironment["dev"]
	if mustGet(t, dev, "region").String != "us" {
		t.Fatalf("expected region inherited from parent shared")
	}
	if mustGet(t, dev, "port").Number != 3000 {
		t.Fatalf("expected child's own dev.port")
	}
	prod := tree.Spaces["child"].PerEnvironment["prod"]
	if mustGet(t, prod, "port").Number != 80 {
		t.Fatalf("expected child's own prod.port")
	}
}

// TestResolveRemappingFanIn verifies that when mapping routes several
// parent environments into one child environment, identical fan-in
// values collapse and differing values conflict.
func TestResolveRemappingFanIn(t *testing.T) {
	newGraph := func() (*graph.Graph, *spacefile.SpaceDecl) {
		parent := &spacefile.SpaceDecl{Name: "parent", Path: "/repo", Environments: []string{"prod1", "prod2", "dev"}}
		child := &spacefile.SpaceDecl{
			Name:         "child",
			Path:         "/repo/child",
			Environments: []string{"production", "development"},
			Mapping: []spacefile.MappingRule{
				{From: "prod1", This: "production"},
				{From: "prod2", This: "production"},
				{From: "dev", This: "development"},
			},
		}
		g := buildGraph(map[string]*graph.Node{
			"parent": {Decl: parent},
			"child":  {Decl: child, Parent: "parent"},
		}, []string{"parent", "child"})
		return g, child
	}

	t.Run("identical values collapse", func(t *testing.T) {
		g, _ := newGraph()
		inputs := map[string]*SpaceInput{
			"parent": {
				PerEnv: map[string]*jsonc.Object{
					"prod1": parseObj(t, `{"key":"A"}`),
					"prod2": parseObj(t, `{"key":"A"}`),
					"dev":   parseObj(t, `{"key":"A"}`),
				},
			},
			"child": {PerEnv: map[string]*jsonc.Object{
				"production":  parseObj(t, `{}`),
				"development": parseObj(t, `{}`),
			}},
		}
		tree, errs := New(Features{}).Resolve(g, inputs)
		if !errs.Empty() {
			t.Fatalf("unexpected errors: %v", errs.Lines())
		}
		production := tree.Spaces["child"].PerEnvironment["production"]
		if mustGet(t, production, "key").String != "A" {
			t.Fatalf("expected key=A")
		}
	})

	t.Run("differing values conflict", func(t *testing.T) {
		g, _ := newGraph()
		inputs := map[string]*SpaceInput{
			"parent": {
				PerEnv: map[string]*jsonc.Object{
					"prod1": parseObj(t, `{"key":"A"}`),
					"prod2": parseObj(t, `{"key":"B"}`),
					"dev":   parseObj(t, `{"key":"A"}`),
				},
			},
			"child": {PerEnv: map[string]*jsonc.Object{
				"production":  parseObj(t, `{}`),
				"development": parseObj(t, `{}`),
			}},
		}
		_, errs := New(Features{}).Resolve(g, inputs)
		if errs.Empty() {
			t.Fatal("expected a PerEnvConflict")
		}
		if !wcerror.HasCode(errs.Errors()[0], wcerror.CodePerEnvConflict) {
			t.Fatalf("expected PerEnvConflict, got %v", errs.Lines())
		}
	})
}

// TestResolveDependencyMerge verifies a dependency's per-environment
// variables merge into the consuming space's own per-environment
// bucket alongside its own variables.
func TestResolveDependencyMerge(t *testing.T) {
	common := &spacefile.SpaceDecl{Name: "common", Path: "/repo/common", Environments: []string{"dev"}}
	app := &spacefile.SpaceDecl{
		Name: "app", Path: "/repo/app", Environments: []string{"dev"},
		Dependencies: []spacefile.Dependency{{Name: "common"}},
	}

	g := buildGraph(map[string]*graph.Node{
		"common": {Decl: common},
		"app":    {Decl: app, Dependencies: []string{"common"}},
	}, []string{"common", "app"})

	inputs := map[string]*SpaceInput{
		"common": {PerEnv: map[string]*jsonc.Object{"dev": parseObj(t, `{"db":"x"}`)}},
		"app":    {PerEnv: map[string]*jsonc.Object{"dev": parseObj(t, `{"port":1}`)}},
	}

	tree, errs := New(Features{}).Resolve(g, inputs)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}
	dev := tree.Spaces["app"].PerEnvironment["dev"]
	if mustGet(t, dev, "db").String != "x" {
		t.Fatalf("expected db inherited from dependency")
	}
	if mustGet(t, dev, "port").Number != 1 {
		t.Fatalf("expected app's own port")
	}
}

// TestResolveNonUniformKeys verifies a key present in one environment's
// bucket but missing from another raises a non-uniform-key error.
func TestResolveNonUniformKeys(t *testing.T) {
	space := &spacefile.SpaceDecl{Name: "s", Path: "/repo/s", Environments: []string{"dev", "prod"}}
	g := buildGraph(map[string]*graph.Node{"s": {Decl: space}}, []string{"s"})

	inputs := map[string]*SpaceInput{
		"s": {PerEnv: map[string]*jsonc.Object{
			"dev":  parseObj(t, `{"x":1}`),
			"prod": parseObj(t, `{"y":2}`),
		}},
	}

	_, errs := New(Features{}).Resolve(g, inputs)
	if errs.Empty() {
		t.Fatal("expected NonUniformKey errors")
	}
	found := 0
	for _, e := range errs.Errors() {
		if e.Code == wcerror.CodeNonUniformKey {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("expected 2 NonUniformKey errors (x missing from prod, y missing from dev), got %d: %v", found, errs.Lines())
	}
}

// TestResolveSharedPerEnvCollision verifies a space cannot declare the
// same key as both shared and per-environment.
func TestResolveSharedPerEnvCollision(t *testing.T) {
	space := &spacefile.SpaceDecl{Name: "s", Path: "/repo/s", Environments: []string{"dev"}}
	g := buildGraph(map[string]*graph.Node{"s": {Decl: space}}, []string{"s"})

	inputs := map[string]*SpaceInput{
		"s": {
			Shared: parseObj(t, `{"region":"us"}`),
			PerEnv: map[string]*jsonc.Object{"dev": parseObj(t, `{"region":"eu"}`)},
		},
	}

	_, errs := New(Features{}).Resolve(g, inputs)
	if errs.Empty() {
		t.Fatal("expected a SharedPerEnvCollision error")
	}
	if !wcerror.HasCode(errs.Errors()[0], wcerror.CodeSharedPerEnvCollision) {
		t.Fatalf("expected SharedPerEnvCollision, got %v", errs.Lines())
	}
}

// TestResolveUnknownMappingFrom verifies a mapping.from that matches no
// parent or dependency environment is rejected.
func TestResolveUnknownMappingFrom(t *testing.T) {
	parent := &spacefile.SpaceDecl{Name: "parent", Path: "/repo", Environments: []string{"dev"}}
	child := &spacefile.SpaceDecl{
		Name: "child", Path: "/repo/child", Environments: []string{"development"},
		Mapping: []spacefile.MappingRule{{From: "staging", This: "development"}},
	}
	g := buildGraph(map[string]*graph.Node{
		"parent": {Decl: parent},
		"child":  {Decl: child, Parent: "parent"},
	}, []string{"parent", "child"})

	inputs := map[string]*SpaceInput{
		"parent": {PerEnv: map[string]*jsonc.Object{"dev": parseObj(t, `{}`)}},
		"child":  {PerEnv: map[string]*jsonc.Object{"development": parseObj(t, `{}`)}},
	}

	_, errs := New(Features{}).Resolve(g, inputs)
	if errs.Empty() {
		t.Fatal("expected an UnknownMappingFrom error")
	}
	if !wcerror.HasCode(errs.Errors()[0], wcerror.CodeUnknownMappingFrom) {
		t.Fatalf("expected UnknownMappingFrom, got %v", errs.Lines())
	}
}
