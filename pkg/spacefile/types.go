package spacefile

import "github.com/weaveconfig/weaveconfig/pkg/jsonc"

// MarkerFileName is the per-directory file that turns a directory into
// a space.
const MarkerFileName = "_space.jsonc"

// SharedVarFileName holds a space's shared variables.
const SharedVarFileName = "_env.jsonc"

// MappingRule rewrites an incoming environment name from a parent or
// dependency into one of this space's declared environments.
type MappingRule struct {
	// From is the environment name as it exists in the parent or a
	// dependency, validated against that source at resolve time.
	From string `json:"from" validate:"required"`

	// This must be a member of the owning SpaceDecl's Environments,
	// checked in validateLocal.
	This string `json:"this" validate:"required"`
}

// Generate controls emission for a single space: either a plain
// boolean, or an object selecting the typed-binding emitter.
type Generate struct {
	// Enabled is true when the config emitter should run for this space
	// at all.
	Enabled bool `json:"enabled"`

	// TypeScript is true when the typed-binding emitter
	// (gen/binding.ts) should also run.
	TypeScript bool `json:"typescript"`
}

// Dependency is a declared dependency on another space by name, with
// an optional selective-inclusion filter from an older schema variant,
// gated behind Features.SelectiveInclusion.
type Dependency struct {
	Name string `json:"name" validate:"required"`

	// Keys, if non-empty, whitelists top-level variable names pulled
	// from this dependency. Only consulted when the selective-inclusion
	// feature flag is enabled.
	Keys []string `json:"keys,omitempty"`

	// Template renames a whitelisted variable; "{}" substitutes the
	// original name (e.g. "VITE_{}"). Only consulted alongside Keys.
	Template string `json:"template,omitempty"`
}

// SpaceDecl is the parsed, immutable representation of one space's
// _space.jsonc marker. Path is the space's absolute directory, assigned
// by the discovery stage, not parsed from the file itself.
type SpaceDecl struct {
	// Path is the space's absolute directory within the weaveconfig
	// root. Combined with Name, this is the space's identity.
	Path string `json:"-"`

	// Name is globally unique across the whole repository.
	Name string `json:"name" validate:"required"`

	// Environments is the ordered set of this space's declared
	// environments. May be empty only for non-leaf utility spaces.
	Environments []string `json:"environments"`

	// Dependencies lists other spaces this space depends on.
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Mapping rewrites incoming parent/dependency environment names
	// into this space's own environments.
	Mapping []MappingRule `json:"mapping,omitempty"`

	// Generate controls this space's own emission.
	Generate Generate `json:"generate"`
}

// HasEnvironment reports whether name is one of s's declared
// environments.
func (s *SpaceDecl) HasEnvironment(name string) bool {
	for _, e := range s.Environments {
		if e == name {
			return true
		}
	}
	return false
}

// DependencyNames returns the plain list of dependency space names, in
// declaration order.
func (s *SpaceDecl) DependencyNames() []string {
	names := make([]string, len(s.Dependencies))
	for i, d := range s.Dependencies {
		names[i] = d.Name
	}
	return names
}

// VariableFileContents is one parsed variable file: either the shared
// file (Env == "") or one environment-scoped file.
type VariableFileContents struct {
	// Env is empty for _env.jsonc (shared), else the <env> parsed from
	// _<env>.env.jsonc.
	Env string

	// SourcePath is the file's absolute path, used for provenance in
	// conflict-error messages.
	SourcePath string

	// Root is the parsed top-level object. A variable file must decode
	// to a JSON object at the root; scalars/arrays at the top level are
	// a local validation error.
	Root *jsonc.Object
}
