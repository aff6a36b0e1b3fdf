// Package emit is the emission stage: it turns a resolver.ResolvedSpace
// into gen/config.json, gen/.gitignore, the optional gen/binding.ts
// typed accessor, and copies a space's non-reserved files with
// {{ variable }} substitution applied.
//
// Emission owns its own formatting choices; it is constrained only by
// the data it receives from the resolver and the output layout it must
// produce.
package emit
