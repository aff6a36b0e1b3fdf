// Package jsonc decodes JSONC (JSON with // and /* */ comments and
// trailing commas) into a tagged-union Value that preserves object key
// order, so that resolved configuration can be re-emitted byte-stable
// across runs.
package jsonc
