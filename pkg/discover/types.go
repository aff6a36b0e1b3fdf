package discover

// VariableFileRef points at one unparsed variable file found alongside
// a space marker: _env.jsonc or _<env>.env.jsonc.
type VariableFileRef struct {
	// Path is the file's absolute path.
	Path string

	// Env is "" for the shared file, else the parsed <env> name.
	Env string
}

// CopyFileRef points at a non-reserved file eligible for the copy
// emitter, with the relative path it should be written to under the
// space's gen output (after __ -> _ unescaping).
type CopyFileRef struct {
	// SourcePath is the file's absolute path.
	SourcePath string

	// RelPath is the path relative to the space's own directory, with
	// any leading-underscore-doubling already resolved on the base name.
	RelPath string
}

// SpaceFiles is discovery's output for one space directory: the marker
// file's raw bytes plus the variable and copy files that belong to it.
type SpaceFiles struct {
	// Dir is the space's absolute directory path.
	Dir string

	// MarkerPath is the absolute path to _space.jsonc.
	MarkerPath string

	// MarkerRaw is the unparsed marker file content.
	MarkerRaw []byte

	// Variables lists this space's own variable files (shared and
	// per-environment), owned exclusively by this space.
	Variables []VariableFileRef

	// CopyFiles lists files eligible for the copy emitter, recursively
	// under Dir but stopping at any nested space's directory: files do
	// not cross space boundaries.
	CopyFiles []CopyFileRef
}
