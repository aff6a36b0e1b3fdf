// Package discover implements the pipeline's first stage: walking a
// weaveconfig root, finding every directory marked by _space.jsonc, and
// grouping each space's variable files and copy-eligible files into the
// shape every later stage consumes.
package discover
