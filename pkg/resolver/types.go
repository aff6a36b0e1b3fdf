package resolver

import (
	"fmt"

	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
)

// Provenance records where a leaf variable was ultimately declared:
// which space, which bucket (shared, or an environment name), and which
// file — carried forward unchanged as the value crosses parent and
// dependency edges, so a conflict raised three hops away still names
// the original author.
type Provenance struct {
	Space       string
	EnvOrShared string
	File        string
}

func (p Provenance) String() string {
	bucket := p.EnvOrShared
	if bucket == "" {
		bucket = "shared"
	}
	return fmt.Sprintf("%s (%s, %s)", p.Space, bucket, p.File)
}

// SpaceInput is the externally-parsed material for one space: its own
// shared and per-environment variable files, keyed and pathed for
// provenance.
type SpaceInput struct {
	Shared     *jsonc.Object
	SharedFile string

	PerEnv     map[string]*jsonc.Object
	PerEnvFile map[string]string
}

// ResolvedSpace is the post-merge record for one space. Shared and
// PerEnvironment are the externally visible merged views; envOwn holds
// each environment's contribution *before* the shared seed is applied,
// used only to feed child spaces' routing without re-propagating
// shared twice.
type ResolvedSpace struct {
	Name string

	// Environments is this space's own declared environment list, in
	// declaration order — used by descendants to compute routing.
	Environments []string

	Shared         *jsonc.Object
	PerEnvironment map[string]*jsonc.Object

	// Provenance maps a bucket key ("" for shared, else an environment
	// name) and dotted leaf path to its originating declaration.
	Provenance map[provenanceKey]Provenance

	envOwn map[string]*jsonc.Object
}

type provenanceKey struct {
	Bucket string
	Path   string
}

// Features gates schema-variant behaviour that is not part of the
// current marker schema.
type Features struct {
	// SelectiveInclusion enables a dependency's `keys`/`template` filter
	// during merge. Off by default: Dependency.Keys and Template are
	// then ignored even when a marker declares them, so behaviour is
	// unchanged unless a repository opts in.
	SelectiveInclusion bool
}
