package spacefile

import (
	"testing"

	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

func TestParseMarkerBooleanGenerate(t *testing.T) {
	decl, err := ParseMarker("/repo/app", []byte(`{
		"name": "app",
		"environments": ["dev", "prod"],
		"generate": true,
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decl.Generate.Enabled {
		t.Error("expected Generate.Enabled from boolean shorthand")
	}
	if decl.Generate.TypeScript {
		t.Error("boolean shorthand must not enable TypeScript")
	}
	if decl.Path != "/repo/app" {
		t.Errorf("expected Path to be set from the caller, got %q", decl.Path)
	}
}

func TestParseMarkerObjectGenerate(t *testing.T) {
	decl, err := ParseMarker("/repo/app", []byte(`{
		"name": "app",
		"environments": ["dev"],
		"generate": { "typescript": true },
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decl.Generate.Enabled || !decl.Generate.TypeScript {
		t.Errorf("expected both Enabled and TypeScript from object form, got %+v", decl.Generate)
	}
}

func TestParseMarkerRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := ParseMarker("/repo/app", []byte(`{"name": "app", "bogus": 1}`))
	if err == nil {
		t.Fatal("expected an error for an unknown top-level key")
	}
	if err.Kind != wcerror.KindLocalValidation {
		t.Errorf("expected KindLocalValidation, got %v", err.Kind)
	}
}

func TestParseMarkerRejectsDuplicateEnvironment(t *testing.T) {
	_, err := ParseMarker("/repo/app", []byte(`{"name": "app", "environments": ["dev", "dev"]}`))
	if err == nil {
		t.Fatal("expected an error for a duplicate environment name")
	}
}

func TestParseMarkerRejectsMappingThisNotDeclared(t *testing.T) {
	_, err := ParseMarker("/repo/app", []byte(`{
		"name": "app",
		"environments": ["dev"],
		"mapping": [{"from": "qa", "this": "staging"}],
	}`))
	if err == nil {
		t.Fatal("expected an error when mapping.this is not a declared environment")
	}
	if err.Code != wcerror.CodeUnknownMappingThis {
		t.Errorf("expected CodeUnknownMappingThis, got %v", err.Code)
	}
}

func TestParseMarkerRequiresName(t *testing.T) {
	_, err := ParseMarker("/repo/app", []byte(`{"environments": ["dev"]}`))
	if err == nil {
		t.Fatal("expected an error when name is missing")
	}
}

func TestParseVariableFileRejectsNonObjectRoot(t *testing.T) {
	_, err := ParseVariableFile("/repo/app/_dev.env.jsonc", "dev", []byte(`[1, 2, 3]`))
	if err == nil {
		t.Fatal("expected an error for a non-object root")
	}
}

func TestParseVariableFileSharedHasEmptyEnv(t *testing.T) {
	contents, err := ParseVariableFile("/repo/_env.jsonc", "", []byte(`{"region": "us"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents.Env != "" {
		t.Errorf("expected empty Env for the shared file, got %q", contents.Env)
	}
	if v, ok := contents.Root.Get("region"); !ok || v.String != "us" {
		t.Errorf("expected region=us, got %+v ok=%v", v, ok)
	}
}
