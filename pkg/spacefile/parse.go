package spacefile

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// markerKeys are the only top-level keys a _space.jsonc may declare.
var markerKeys = map[string]bool{
	"name":         true,
	"environments": true,
	"dependencies": true,
	"mapping":      true,
	"generate":     true,
}

var structValidator = validator.New()

// ParseMarker parses and locally validates one space's _space.jsonc.
// path identifies the marker file and is used only for error location;
// the caller is responsible for setting the returned SpaceDecl's Path
// to the space's directory. Any parse or local-schema failure yields a
// wcerror.KindParse/KindLocalValidation error.
func ParseMarker(path string, raw []byte) (*SpaceDecl, *wcerror.Error) {
	val, err := jsonc.Parse(raw)
	if err != nil {
		return nil, wcerror.Wrap(wcerror.KindParse, "", path, err)
	}
	if val.Kind != jsonc.KindObject {
		return nil, wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path,
			"_space.jsonc must decode to a JSON object")
	}

	for _, k := range jsonc.Keys(val) {
		if !markerKeys[k] {
			return nil, wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path,
				fmt.Sprintf("unknown top-level key %q", k))
		}
	}

	decl := &SpaceDecl{}
	if err := decodeGenerate(val, decl); err != nil {
		return nil, wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path, err.Error())
	}
	if err := jsonc.Decode(val, decl); err != nil {
		return nil, wcerror.Wrap(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path, err)
	}
	decl.Path = path

	if err := structValidator.Struct(decl); err != nil {
		return nil, wcerror.Wrap(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path, err)
	}

	if werr := validateLocal(decl); werr != nil {
		werr.Path = path
		return nil, werr
	}

	return decl, nil
}

// decodeGenerate handles the boolean-or-object form of "generate"
// before the generic jsonc.Decode runs, since a plain JSON boolean
// cannot unmarshal into the Generate struct.
func decodeGenerate(val jsonc.Value, decl *SpaceDecl) error {
	if val.Kind != jsonc.KindObject || val.Object == nil {
		return nil
	}
	genVal, ok := val.Object.Get("generate")
	if !ok {
		return nil
	}
	switch genVal.Kind {
	case jsonc.KindBool:
		decl.Generate = Generate{Enabled: genVal.Bool}
		val.Object.Delete("generate")
		return nil
	case jsonc.KindObject:
		var g Generate
		if err := jsonc.Decode(genVal, &g); err != nil {
			return fmt.Errorf("invalid generate object: %w", err)
		}
		g.Enabled = true
		decl.Generate = g
		val.Object.Delete("generate")
		return nil
	default:
		return fmt.Errorf("generate must be a boolean or an object, got %v", genVal.Kind)
	}
}

// validateLocal enforces the cross-field rules scoped to a single
// space's own declaration (environments uniqueness, mapping.this
// membership, dependency name uniqueness). Graph-level checks (unknown
// dependency targets, cycles, duplicate space names across the whole
// repository) live in pkg/graph.
func validateLocal(decl *SpaceDecl) *wcerror.Error {
	seenEnv := make(map[string]bool, len(decl.Environments))
	for _, e := range decl.Environments {
		if e == "" {
			return wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, "",
				"environments must not contain an empty string")
		}
		if seenEnv[e] {
			return wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, "",
				fmt.Sprintf("duplicate environment name %q", e))
		}
		seenEnv[e] = true
	}

	seenDep := make(map[string]bool, len(decl.Dependencies))
	for _, d := range decl.Dependencies {
		if seenDep[d.Name] {
			return wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, "",
				fmt.Sprintf("duplicate dependency %q", d.Name))
		}
		seenDep[d.Name] = true
	}

	for _, m := range decl.Mapping {
		if !decl.HasEnvironment(m.This) {
			return wcerror.New(wcerror.KindLocalValidation, wcerror.CodeUnknownMappingThis, "",
				fmt.Sprintf("mapping.this %q is not a declared environment", m.This))
		}
	}

	return nil
}

// ParseVariableFile parses one _env.jsonc or _<env>.env.jsonc file. env
// is "" for the shared file. The caller (pkg/pipeline) supplies the env
// that pkg/discover obtained from ClassifyFile; this function only
// validates the file's own content.
func ParseVariableFile(path, env string, raw []byte) (*VariableFileContents, *wcerror.Error) {
	val, err := jsonc.Parse(raw)
	if err != nil {
		return nil, wcerror.Wrap(wcerror.KindParse, "", path, err)
	}
	if val.Kind != jsonc.KindObject {
		return nil, wcerror.New(wcerror.KindLocalValidation, wcerror.CodeLocalValidation, path,
			"variable files must decode to a JSON object at the root")
	}

	return &VariableFileContents{
		Env:        env,
		SourcePath: path,
		Root:       val.Object,
	}, nil
}
