package emit

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
)

func parseObj(t *testing.T, src string) *jsonc.Object {
	t.Helper()
	v, err := jsonc.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return v.Object
}

func TestWriteConfigIncludesSharedAtRootAndPerEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	decl := &spacefile.SpaceDecl{
		Name: "child", Path: "/repo/child", Environments: []string{"dev", "prod"},
		Generate: spacefile.Generate{Enabled: true},
	}
	rs := &resolver.ResolvedSpace{
		Shared: parseObj(t, `{"region":"us"}`),
		PerEnvironment: map[string]*jsonc.Object{
			"dev":  parseObj(t, `{"region":"us","port":3000}`),
			"prod": parseObj(t, `{"region":"us","port":80}`),
		},
	}

	if err := WriteConfig(fs, decl.Path+"/gen", decl, rs); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	raw, err := afero.ReadFile(fs, "/repo/child/gen/config.json")
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	v, err := jsonc.Parse(raw)
	if err != nil {
		t.Fatalf("parse emitted config.json: %v", err)
	}
	shared, ok := v.Object.Get("shared")
	if !ok || shared.Object == nil {
		t.Fatal("missing shared object")
	}
	if region, _ := shared.Object.Get("region"); region.String != "us" {
		t.Fatalf("expected shared.region=us, got %v", region)
	}
	dev, ok := v.Object.Get("dev")
	if !ok {
		t.Fatal("missing dev object")
	}
	if port, _ := dev.Object.Get("port"); port.Number != 3000 {
		t.Fatalf("expected dev.port=3000, got %v", port)
	}
	if region, _ := dev.Object.Get("region"); region.String != "us" {
		t.Fatal("expected dev.region inherited from shared")
	}

	if _, err := afero.ReadFile(fs, "/repo/child/gen/.gitignore"); err != nil {
		t.Fatalf("expected .gitignore to be written: %v", err)
	}
}

// TestCopyFilesSubstitutesAndEscapes substitutes a {{ variable }}
// reference against the resolved tree while leaving a backslash-escaped
// \{{ reference untouched.
func TestCopyFilesSubstitutesAndEscapes(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/repo/app/greet.txt", []byte(`hello {{ name }} \{{ keep }}`), 0o644); err != nil {
		t.Fatal(err)
	}

	rs := &resolver.ResolvedSpace{
		Shared:         parseObj(t, `{"name":"world"}`),
		PerEnvironment: map[string]*jsonc.Object{},
	}

	files := []discover.CopyFileRef{{SourcePath: "/repo/app/greet.txt", RelPath: "greet.txt"}}
	errs := CopyFiles(fs, "/repo/app/gen", "/repo/app", files, rs, nil)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}

	out, err := afero.ReadFile(fs, "/repo/app/gen/greet.txt")
	if err != nil {
		t.Fatalf("read copied file: %v", err)
	}
	if string(out) != "hello world {{ keep }}" {
		t.Fatalf("expected substitution with escape preserved, got %q", out)
	}
}

func TestCopyFilesFansOutPerEnvironmentReference(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/repo/app/conf.txt", []byte("port={{ port }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs := &resolver.ResolvedSpace{
		Shared: parseObj(t, `{}`),
		PerEnvironment: map[string]*jsonc.Object{
			"dev":  parseObj(t, `{"port":3000}`),
			"prod": parseObj(t, `{"port":80}`),
		},
	}

	files := []discover.CopyFileRef{{SourcePath: "/repo/app/conf.txt", RelPath: "conf.txt"}}
	errs := CopyFiles(fs, "/repo/app/gen", "/repo/app", files, rs, []string{"dev", "prod"})
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Lines())
	}

	dev, err := afero.ReadFile(fs, "/repo/app/gen/dev/conf.txt")
	if err != nil {
		t.Fatalf("expected per-env copy for dev: %v", err)
	}
	if string(dev) != "port=3000" {
		t.Fatalf("expected port=3000, got %q", dev)
	}
	prod, err := afero.ReadFile(fs, "/repo/app/gen/prod/conf.txt")
	if err != nil {
		t.Fatalf("expected per-env copy for prod: %v", err)
	}
	if string(prod) != "port=80" {
		t.Fatalf("expected port=80, got %q", prod)
	}
}
