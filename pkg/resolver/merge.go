package resolver

import (
	"fmt"

	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// lookupFunc resolves a leaf's dotted path (relative to the merge root)
// to the Provenance it should be recorded under in the destination.
type lookupFunc func(path string) Provenance

// conflictSite names what a merge conflict is about, for error messages
// and for picking between SharedVariableConflict and PerEnvConflict.
type conflictSite struct {
	SpacePath string
	Space     string
	Env       string // "" for the shared bucket
}

func (c conflictSite) newConflict(path string, oldProv, newProv Provenance) *wcerror.Error {
	if c.Env == "" {
		return wcerror.New(wcerror.KindResolution, wcerror.CodeSharedConflict, c.SpacePath,
			fmt.Sprintf("shared variable %q conflicts: %s vs %s", path, oldProv, newProv))
	}
	return wcerror.New(wcerror.KindResolution, wcerror.CodePerEnvConflict, c.SpacePath,
		fmt.Sprintf("space %q env %q variable %q conflicts: %s vs %s", c.Space, c.Env, path, oldProv, newProv))
}

// mergeInto walks src and folds it into dst. When overrideAllowed is
// true (S's own file overlaying inherited content), src always wins —
// this is the "child's dev.port=3000 shadows parent's 80" shadowing
// rule. When false (two inherited sources, e.g. parent vs a
// dependency, or two fan-in sources), equal values collapse silently
// and differing values raise a conflict through site.
func mergeInto(dst *jsonc.Object, src *jsonc.Object, lookup lookupFunc, overrideAllowed bool, prefix string, prov map[provenanceKey]Provenance, bucket string, errs *wcerror.List, site conflictSite) {
	if src == nil {
		return
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		val := pair.Value
		path := joinPath(prefix, key)

		existing, ok := dst.Get(key)
		if !ok {
			dst.Set(key, deepCopy(val))
			recordLeaves(val, path, lookup, prov, bucket)
			continue
		}

		if existing.Kind == jsonc.KindObject && val.Kind == jsonc.KindObject {
			mergeInto(existing.Object, val.Object, lookup, overrideAllowed, path, prov, bucket, errs, site)
			continue
		}

		if overrideAllowed {
			dst.Set(key, deepCopy(val))
			recordLeaves(val, path, lookup, prov, bucket)
			continue
		}

		if jsonc.Equal(existing, val) {
			continue
		}

		oldProv := prov[provenanceKey{Bucket: bucket, Path: path}]
		newProv := lookup(path)
		errs.Add(site.newConflict(path, oldProv, newProv))
	}
}

// overlayOwn unconditionally overlays own (the space's locally-declared,
// already-merged per-environment contribution) onto a bucket that began
// as a copy of shared. This is never a conflict site: whether a key
// legitimately belongs to both is the separate shared/per-env
// disjointness check.
func overlayOwn(dst *jsonc.Object, own *jsonc.Object, ownProv map[provenanceKey]Provenance, ownBucket string, prov map[provenanceKey]Provenance, dstBucket string, prefix string) {
	if own == nil {
		return
	}
	for pair := own.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		val := pair.Value
		path := joinPath(prefix, key)

		if existing, ok := dst.Get(key); ok && existing.Kind == jsonc.KindObject && val.Kind == jsonc.KindObject {
			overlayOwn(existing.Object, val.Object, ownProv, ownBucket, prov, dstBucket, path)
			continue
		}

		dst.Set(key, deepCopy(val))
		copyLeafProvenance(val, path, ownProv, ownBucket, prov, dstBucket)
	}
}

func copyLeafProvenance(val jsonc.Value, path string, src map[provenanceKey]Provenance, srcBucket string, dst map[provenanceKey]Provenance, dstBucket string) {
	if val.Kind == jsonc.KindObject {
		if val.Object == nil {
			return
		}
		for pair := val.Object.Oldest(); pair != nil; pair = pair.Next() {
			copyLeafProvenance(pair.Value, joinPath(path, pair.Key), src, srcBucket, dst, dstBucket)
		}
		return
	}
	if p, ok := src[provenanceKey{Bucket: srcBucket, Path: path}]; ok {
		dst[provenanceKey{Bucket: dstBucket, Path: path}] = p
	}
}

func recordLeaves(val jsonc.Value, path string, lookup lookupFunc, prov map[provenanceKey]Provenance, bucket string) {
	if val.Kind == jsonc.KindObject {
		if val.Object == nil {
			return
		}
		for pair := val.Object.Oldest(); pair != nil; pair = pair.Next() {
			recordLeaves(pair.Value, joinPath(path, pair.Key), lookup, prov, bucket)
		}
		return
	}
	prov[provenanceKey{Bucket: bucket, Path: path}] = lookup(path)
}

func deepCopy(v jsonc.Value) jsonc.Value {
	switch v.Kind {
	case jsonc.KindArray:
		items := make([]jsonc.Value, len(v.Array))
		for i, item := range v.Array {
			items[i] = deepCopy(item)
		}
		return jsonc.Array(items)
	case jsonc.KindObject:
		out := jsonc.NewObject()
		if v.Object != nil {
			for pair := v.Object.Oldest(); pair != nil; pair = pair.Next() {
				out.Set(pair.Key, deepCopy(pair.Value))
			}
		}
		return jsonc.NewObjectValue(out)
	default:
		return v
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// leafPaths collects every dotted leaf path reachable under obj, used
// by the uniformity check.
func leafPaths(obj *jsonc.Object, prefix string, out map[string]bool) {
	if obj == nil {
		return
	}
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		path := joinPath(prefix, pair.Key)
		if pair.Value.Kind == jsonc.KindObject {
			leafPaths(pair.Value.Object, path, out)
			continue
		}
		out[path] = true
	}
}
