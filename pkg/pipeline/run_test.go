package pipeline

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return string(raw)
}

// TestRunParentChildInheritance verifies a root space's shared variable
// reaches a child's per-environment config.json through the full
// discover -> parse -> graph -> resolve -> emit pipeline.
func TestRunParentChildInheritance(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/_space.jsonc", `{"name":"root","environments":["dev","prod"],"generate":false}`)
	writeFile(t, fs, "/repo/_env.jsonc", `{"region":"us"}`)
	writeFile(t, fs, "/repo/child/_space.jsonc", `{"name":"child","environments":["dev","prod"],"generate":true}`)
	writeFile(t, fs, "/repo/child/_dev.env.jsonc", `{"port":3000}`)
	writeFile(t, fs, "/repo/child/_prod.env.jsonc", `{"port":80}`)

	result, errs := Run(context.Background(), Options{
		Fs:   fs,
		Root: "/repo",
		Emit: true,
	})
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}
	if result.SpacesDiscovered != 2 {
		t.Fatalf("expected 2 spaces, got %d", result.SpacesDiscovered)
	}

	body := readFile(t, fs, "/repo/child/gen/config.json")
	for _, want := range []string{`"region": "us"`, `"port": 3000`, `"port": 80`} {
		if !contains(body, want) {
			t.Errorf("config.json missing %q, got:\n%s", want, body)
		}
	}

	if _, err := fs.Stat("/repo/gen/config.json"); err == nil {
		t.Fatal("root space has generate:false, expected no gen/ output")
	}
}

// TestRunDependencyCycleEmitsNothing verifies a dependency cycle is
// rejected and no gen/ directory is written anywhere in the tree.
func TestRunDependencyCycleEmitsNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/_space.jsonc", `{"name":"root","environments":[]}`)
	writeFile(t, fs, "/repo/a/_space.jsonc", `{"name":"a","environments":["dev"],"dependencies":[{"name":"b"}],"generate":true}`)
	writeFile(t, fs, "/repo/a/_dev.env.jsonc", `{"x":1}`)
	writeFile(t, fs, "/repo/b/_space.jsonc", `{"name":"b","environments":["dev"],"dependencies":[{"name":"a"}],"generate":true}`)
	writeFile(t, fs, "/repo/b/_dev.env.jsonc", `{"y":1}`)

	_, errs := Run(context.Background(), Options{
		Fs:   fs,
		Root: "/repo",
		Emit: true,
	})
	if errs.Empty() {
		t.Fatal("expected a dependency cycle error")
	}

	for _, dir := range []string{"/repo/a/gen", "/repo/b/gen"} {
		if exists, _ := afero.DirExists(fs, dir); exists {
			t.Fatalf("expected no gen/ output at %s after a rejected cycle", dir)
		}
	}
}

// TestRunValidateDoesNotEmit verifies the validate subcommand's
// contract: Emit:false stops after resolution and never writes gen/.
func TestRunValidateDoesNotEmit(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/_space.jsonc", `{"name":"root","environments":["dev"],"generate":true}`)
	writeFile(t, fs, "/repo/_dev.env.jsonc", `{"x":1}`)

	result, errs := Run(context.Background(), Options{
		Fs:       fs,
		Root:     "/repo",
		Emit:     false,
		Features: resolver.Features{},
	})
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}
	if result.Tree == nil || result.Tree.Spaces["root"] == nil {
		t.Fatal("expected a resolved tree even without emission")
	}
	if exists, _ := afero.DirExists(fs, "/repo/gen"); exists {
		t.Fatal("validate must not write gen/")
	}
}

// TestRunUndeclaredEnvFileErrors verifies a per-environment variable
// file naming an environment the space never declared is reported as
// an error rather than silently dropped.
func TestRunUndeclaredEnvFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/repo/_space.jsonc", `{"name":"root","environments":["dev","prod"],"generate":true}`)
	writeFile(t, fs, "/repo/_dev.env.jsonc", `{"x":1}`)
	writeFile(t, fs, "/repo/_prod.env.jsonc", `{"x":2}`)
	writeFile(t, fs, "/repo/_staging.env.jsonc", `{"x":3}`)

	_, errs := Run(context.Background(), Options{
		Fs:   fs,
		Root: "/repo",
		Emit: true,
	})
	if errs.Empty() {
		t.Fatal("expected an error for the undeclared staging environment file")
	}
	found := false
	for _, e := range errs.Errors() {
		if e.Code == wcerror.CodeUndeclaredEnvFile {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CodeUndeclaredEnvFile error, got: %v", errs.Lines())
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
