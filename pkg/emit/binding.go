package emit

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// bindingTemplate generates the typed binding consumers import.
// text/template stands in for a dedicated TypeScript codegen library
// (DESIGN.md justifies this over dave/jennifer, which only generates
// Go).
var bindingTemplate = template.Must(template.New("binding.ts").Parse(`// Code generated by weaveconfig. DO NOT EDIT.

export type Environment = {{.EnvUnion}};

export interface ConfigType {{.ConfigType}}

const config: Record<Environment, ConfigType> = {{.ConfigJSON}};

const shared: Partial<ConfigType> = {{.SharedJSON}};

const environments: Environment[] = [{{.EnvList}}];

export function env(): ConfigType {
	const active = process.env.ENV;
	if (!active || environments.indexOf(active as Environment) === -1) {
		throw new Error("weaveconfig: ENV is unset or not a declared environment: " + active);
	}
	return { ...shared, ...config[active as Environment] };
}
`))

type bindingData struct {
	EnvUnion   string
	EnvList    string
	ConfigType string
	ConfigJSON string
	SharedJSON string
}

// WriteBinding writes gen/binding.ts. It does not check
// decl.Generate.TypeScript itself; Emit calls it only when that is set.
func WriteBinding(fs afero.Fs, genDir string, decl *spacefile.SpaceDecl, rs *resolver.ResolvedSpace) *wcerror.Error {
	data := bindingData{
		EnvUnion:   envUnion(decl.Environments),
		EnvList:    envList(decl.Environments),
		ConfigType: configTypeShape(decl, rs),
	}

	configJSON, err := configRecordJSON(decl, rs)
	if err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("marshal binding config: %w", err))
	}
	data.ConfigJSON = configJSON

	sharedJSON, err := jsonc.NewObjectValue(nonNilObject(rs.Shared)).MarshalIndent("", "  ")
	if err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("marshal binding shared: %w", err))
	}
	data.SharedJSON = string(sharedJSON)

	var buf bytes.Buffer
	if err := bindingTemplate.Execute(&buf, data); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("render binding.ts: %w", err))
	}

	if err := fs.MkdirAll(genDir, 0o755); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("create %s: %w", genDir, err))
	}
	path := genDir + "/binding.ts"
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

func envUnion(envs []string) string {
	if len(envs) == 0 {
		return "never"
	}
	quoted := make([]string, len(envs))
	for i, e := range envs {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return strings.Join(quoted, " | ")
}

func envList(envs []string) string {
	quoted := make([]string, len(envs))
	for i, e := range envs {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return strings.Join(quoted, ", ")
}

// configTypeShape renders a TypeScript interface body from the first
// declared environment's merged view — the uniformity check guarantees
// every environment shares the same key set, so any one of them
// describes the shape.
func configTypeShape(decl *spacefile.SpaceDecl, rs *resolver.ResolvedSpace) string {
	if len(decl.Environments) == 0 {
		return "{}"
	}
	sample := rs.PerEnvironment[decl.Environments[0]]
	return tsObjectType(sample, "")
}

func tsObjectType(obj *jsonc.Object, indent string) string {
	if obj == nil || obj.Len() == 0 {
		return "{}"
	}
	inner := indent + "\t"
	var b strings.Builder
	b.WriteString("{\n")
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		b.WriteString(inner)
		b.WriteString(tsFieldName(pair.Key))
		b.WriteString(": ")
		b.WriteString(tsType(pair.Value, inner))
		b.WriteString(";\n")
	}
	b.WriteString(indent + "}")
	return b.String()
}

func tsType(v jsonc.Value, indent string) string {
	switch v.Kind {
	case jsonc.KindString:
		return "string"
	case jsonc.KindNumber:
		return "number"
	case jsonc.KindBool:
		return "boolean"
	case jsonc.KindArray:
		if len(v.Array) == 0 {
			return "unknown[]"
		}
		return tsType(v.Array[0], indent) + "[]"
	case jsonc.KindObject:
		return tsObjectType(v.Object, indent)
	default:
		return "unknown"
	}
}

func tsFieldName(key string) string {
	for _, r := range key {
		if !(r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Sprintf("%q", key)
		}
	}
	return key
}

// configRecordJSON renders the `Record<Environment, ConfigType>` literal
// backing the generated config constant.
func configRecordJSON(decl *spacefile.SpaceDecl, rs *resolver.ResolvedSpace) (string, error) {
	root := jsonc.NewObject()
	for _, env := range decl.Environments {
		root.Set(env, jsonc.NewObjectValue(nonNilObject(rs.PerEnvironment[env])))
	}
	b, err := jsonc.NewObjectValue(root).MarshalIndent("", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
