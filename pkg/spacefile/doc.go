// Package spacefile parses and locally validates the marker and
// variable files that make up a weaveconfig space: _space.jsonc,
// _env.jsonc, and _<env>.env.jsonc.
//
// A SpaceDecl is immutable once parsed; validation here is purely
// local (well-formedness of one space's own files). Cross-space checks
// — unique names, resolvable dependencies, mapping.from targets — are
// the graph and resolver packages' job.
package spacefile
