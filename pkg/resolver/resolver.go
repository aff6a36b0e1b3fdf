package resolver

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/weaveconfig/weaveconfig/pkg/graph"
	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// ResolvedTree is the resolver's output: one ResolvedSpace per space,
// produced only when every error list is empty.
type ResolvedTree struct {
	// RunID identifies this resolution invocation: a fresh UUID per
	// Resolve call.
	RunID string

	Spaces map[string]*ResolvedSpace
}

// Resolver runs a one-pass, topological-order merge over the space
// graph: each space resolves only after its parent and dependencies
// have already resolved.
type Resolver struct {
	Features Features
}

// New builds a Resolver. A zero Features value matches the current
// marker schema exactly (selective inclusion off).
func New(features Features) *Resolver {
	return &Resolver{Features: features}
}

// Resolve walks g.Order, resolving each space after its parent and
// dependencies, and returns the accumulated ResolvedTree. Errors from
// every space are collected before returning; a non-empty error list
// means the tree is incomplete and must not be emitted.
func (r *Resolver) Resolve(g *graph.Graph, inputs map[string]*SpaceInput) (*ResolvedTree, *wcerror.List) {
	errs := &wcerror.List{}
	resolved := make(map[string]*ResolvedSpace, len(g.Order))

	for _, name := range g.Order {
		node := g.Nodes[name]
		input := inputs[name]
		if input == nil {
			input = &SpaceInput{}
		}

		var parent *ResolvedSpace
		if node.Parent != "" {
			parent = resolved[node.Parent]
		}

		deps := make([]*ResolvedSpace, 0, len(node.Dependencies))
		for _, depName := range node.Dependencies {
			if d := resolved[depName]; d != nil {
				deps = append(deps, d)
			}
		}

		resolved[name] = r.resolveSpace(node, parent, deps, input, errs)
	}

	if !errs.Empty() {
		return nil, errs
	}
	return &ResolvedTree{RunID: uuid.NewString(), Spaces: resolved}, errs
}

func (r *Resolver) resolveSpace(node *graph.Node, parent *ResolvedSpace, deps []*ResolvedSpace, input *SpaceInput, errs *wcerror.List) *ResolvedSpace {
	decl := node.Decl
	rs := &ResolvedSpace{
		Name:           decl.Name,
		Environments:   append([]string(nil), decl.Environments...),
		Shared:         jsonc.NewObject(),
		PerEnvironment: make(map[string]*jsonc.Object, len(decl.Environments)),
		Provenance:     make(map[provenanceKey]Provenance),
		envOwn:         make(map[string]*jsonc.Object, len(decl.Environments)),
	}

	r.validateMappingSources(decl, parent, deps, errs)

	sharedSite := conflictSite{SpacePath: decl.Path, Space: decl.Name}

	if parent != nil {
		mergeInto(rs.Shared, parent.Shared, sourceLookup(parent, ""), false, "", rs.Provenance, "", errs, sharedSite)
	}
	for i, dep := range deps {
		sharedSrc, sharedLookup := r.filteredSource(decl, i, dep, "")
		mergeInto(rs.Shared, sharedSrc, sharedLookup, false, "", rs.Provenance, "", errs, sharedSite)
	}
	if input.Shared != nil {
		mergeInto(rs.Shared, input.Shared, ownLookup(decl.Name, "", input.SharedFile), true, "", rs.Provenance, "", errs, sharedSite)
	}

	for _, env := range decl.Environments {
		own := jsonc.NewObject()
		site := conflictSite{SpacePath: decl.Path, Space: decl.Name, Env: env}

		if parent != nil {
			for _, srcEnv := range routedSourceEnvs(parent.Environments, decl, env) {
				mergeInto(own, parent.envOwn[srcEnv], sourceLookup(parent, srcEnv), false, "", rs.Provenance, env, errs, site)
			}
		}
		for i, dep := range deps {
			for _, srcEnv := range routedSourceEnvs(dep.Environments, decl, env) {
				src, lookup := r.filteredSource(decl, i, dep, srcEnv)
				mergeInto(own, src, lookup, false, "", rs.Provenance, env, errs, site)
			}
		}
		if ownFile, ok := input.PerEnv[env]; ok {
			mergeInto(own, ownFile, ownLookup(decl.Name, env, input.PerEnvFile[env]), true, "", rs.Provenance, env, errs, site)
		}

		rs.envOwn[env] = own

		full := jsonc.NewObject()
		overlayOwn(full, rs.Shared, rs.Provenance, "", rs.Provenance, env, "")
		overlayOwn(full, own, rs.Provenance, env, rs.Provenance, env, "")
		rs.PerEnvironment[env] = full
	}

	r.checkUniformity(rs, decl.Path, errs)
	r.checkDisjointness(rs, decl.Path, errs)

	return rs
}

// sourceLookup returns a lookupFunc reading back the provenance a
// source space already recorded for its own bucket (shared, or one of
// its environments), so provenance survives unchanged across hops.
func sourceLookup(src *ResolvedSpace, bucket string) lookupFunc {
	return func(path string) Provenance {
		return src.Provenance[provenanceKey{Bucket: bucket, Path: path}]
	}
}

// ownLookup returns a constant lookupFunc for a space's own file — every
// leaf in that file shares the same (space, bucket, file) provenance.
func ownLookup(space, bucket, file string) lookupFunc {
	p := Provenance{Space: space, EnvOrShared: bucket, File: file}
	return func(string) Provenance { return p }
}

// routedSourceEnvs computes which of a source's own environment names
// route into dstEnv of the consuming space's mapping.
func routedSourceEnvs(sourceEnvs []string, decl *spacefile.SpaceDecl, dstEnv string) []string {
	var out []string
	for _, srcEnv := range sourceEnvs {
		for _, dst := range routeTargets(srcEnv, decl) {
			if dst == dstEnv {
				out = append(out, srcEnv)
				break
			}
		}
	}
	return out
}

// routeTargets implements the per-source-environment routing rule:
// explicit mapping (with fan-out), else implied identity if the source
// env name is also declared locally, else dropped.
func routeTargets(srcEnv string, decl *spacefile.SpaceDecl) []string {
	var targets []string
	matched := false
	for _, rule := range decl.Mapping {
		if rule.From == srcEnv {
			targets = append(targets, rule.This)
			matched = true
		}
	}
	if matched {
		return targets
	}
	if decl.HasEnvironment(srcEnv) {
		return []string{srcEnv}
	}
	return nil
}

// filteredSource applies the selective-inclusion feature to a
// dependency's contribution for the named bucket ("" = shared, else an
// environment of dep). Returns the unfiltered bucket and sourceLookup
// when the feature is off or the dependency declares no Keys.
func (r *Resolver) filteredSource(decl *spacefile.SpaceDecl, depIndex int, dep *ResolvedSpace, bucket string) (*jsonc.Object, lookupFunc) {
	depDecl := decl.Dependencies[depIndex]
	if !r.Features.SelectiveInclusion || len(depDecl.Keys) == 0 {
		var obj *jsonc.Object
		if bucket == "" {
			obj = dep.Shared
		} else {
			obj = dep.envOwn[bucket]
		}
		return obj, sourceLookup(dep, bucket)
	}

	var src *jsonc.Object
	if bucket == "" {
		src = dep.Shared
	} else {
		src = dep.envOwn[bucket]
	}
	filtered := jsonc.NewObject()
	renamed := make(map[string]string, len(depDecl.Keys))
	for _, key := range depDecl.Keys {
		if src == nil {
			continue
		}
		val, ok := src.Get(key)
		if !ok {
			continue
		}
		newKey := key
		if depDecl.Template != "" {
			newKey = strings.ReplaceAll(depDecl.Template, "{}", key)
		}
		filtered.Set(newKey, val)
		renamed[newKey] = key
	}

	p := Provenance{Space: dep.Name, EnvOrShared: bucket, File: fmt.Sprintf("selective-inclusion from %q", depDecl.Name)}
	lookup := func(path string) Provenance {
		if orig, ok := renamed[path]; ok {
			if origProv, ok := dep.Provenance[provenanceKey{Bucket: bucket, Path: orig}]; ok {
				return origProv
			}
		}
		return p
	}
	return filtered, lookup
}

// validateMappingSources enforces the second half of mapping
// validation: every mapping.from must refer to an environment that
// exists in at least one immediate parent or dependency. (mapping.this
// membership against the space's own environments is checked earlier,
// at parse time, in pkg/spacefile — only this half needs graph-stage
// knowledge.)
func (r *Resolver) validateMappingSources(decl *spacefile.SpaceDecl, parent *ResolvedSpace, deps []*ResolvedSpace, errs *wcerror.List) {
	for _, rule := range decl.Mapping {
		found := false
		if parent != nil && contains(parent.Environments, rule.From) {
			found = true
		}
		for _, dep := range deps {
			if contains(dep.Environments, rule.From) {
				found = true
				break
			}
		}
		if !found {
			errs.Add(wcerror.New(wcerror.KindResolution, wcerror.CodeUnknownMappingFrom, decl.Path,
				fmt.Sprintf("space %q: mapping.from %q does not match any parent or dependency environment", decl.Name, rule.From)))
		}
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// checkUniformity enforces that every per-environment bucket defines
// the same set of leaf keys.
func (r *Resolver) checkUniformity(rs *ResolvedSpace, path string, errs *wcerror.List) {
	if len(rs.Environments) < 2 {
		return
	}
	perEnvLeaves := make(map[string]map[string]bool, len(rs.Environments))
	union := make(map[string]bool)
	for _, env := range rs.Environments {
		leaves := make(map[string]bool)
		leafPaths(rs.PerEnvironment[env], "", leaves)
		perEnvLeaves[env] = leaves
		for k := range leaves {
			union[k] = true
		}
	}
	for key := range union {
		var missing []string
		for _, env := range rs.Environments {
			if !perEnvLeaves[env][key] {
				missing = append(missing, env)
			}
		}
		if len(missing) > 0 {
			errs.Add(wcerror.New(wcerror.KindResolution, wcerror.CodeNonUniformKey, path,
				fmt.Sprintf("space %q: key %q is missing from environments: %s", rs.Name, key, strings.Join(missing, ", "))))
		}
	}
}

// checkDisjointness enforces that a key must not be declared as both
// shared and per-environment *for this space*. Compared against envOwn
// (this space's own per-env
// contribution before the shared seed), not the final merged bucket —
// otherwise every inherited shared key would spuriously collide with
// itself in every environment (every per_environment bucket legitimately
// contains the shared keys it was seeded with).
func (r *Resolver) checkDisjointness(rs *ResolvedSpace, path string, errs *wcerror.List) {
	sharedLeaves := make(map[string]bool)
	leafPaths(rs.Shared, "", sharedLeaves)
	if len(sharedLeaves) == 0 {
		return
	}
	for _, env := range rs.Environments {
		ownLeaves := make(map[string]bool)
		leafPaths(rs.envOwn[env], "", ownLeaves)
		for key := range ownLeaves {
			if sharedLeaves[key] {
				errs.Add(wcerror.New(wcerror.KindResolution, wcerror.CodeSharedPerEnvCollision, path,
					fmt.Sprintf("space %q: key %q is declared both as shared and in environment %q", rs.Name, key, env)))
			}
		}
	}
}
