package spacefile

import (
	"regexp"
	"strings"
)

// envFileName matches _<env>.env.jsonc where <env> is [A-Za-z0-9_-]+.
var envFileName = regexp.MustCompile(`^_([A-Za-z0-9_-]+)\.env\.jsonc$`)

// FileRole classifies a file found inside a space's directory.
type FileRole int

const (
	// RoleMarker is _space.jsonc.
	RoleMarker FileRole = iota
	// RoleSharedVars is _env.jsonc.
	RoleSharedVars
	// RoleEnvVars is _<env>.env.jsonc.
	RoleEnvVars
	// RoleReservedUnknown is any other single-underscore-prefixed name;
	// unrecognized reserved files are simply skipped by discovery, not
	// copied and not parsed.
	RoleReservedUnknown
	// RoleCopy is an ordinary file eligible for the copy emitter.
	RoleCopy
)

// ClassifyFile determines a file's role from its base name and, for
// RoleCopy, the name under which it should be emitted — doubling a
// leading underscore forces a reserved-looking name to be copied
// verbatim under its single-underscore form ("__foo" -> copied as
// "_foo"). That escape is checked before the env-file pattern so that
// a name like "__staging.env.jsonc" is force-copied as
// "_staging.env.jsonc" rather than mistaken for an env-vars file whose
// environment is literally named "_staging".
func ClassifyFile(name string) (role FileRole, env string, copyAs string) {
	if strings.HasPrefix(name, "__") {
		return RoleCopy, "", "_" + strings.TrimPrefix(name, "__")
	}

	switch {
	case name == MarkerFileName:
		return RoleMarker, "", ""
	case name == SharedVarFileName:
		return RoleSharedVars, "", ""
	default:
		if m := envFileName.FindStringSubmatch(name); m != nil {
			return RoleEnvVars, m[1], ""
		}
	}

	if strings.HasPrefix(name, "_") {
		return RoleReservedUnknown, "", ""
	}
	return RoleCopy, "", name
}
