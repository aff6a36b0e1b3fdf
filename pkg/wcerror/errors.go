// Package wcerror provides the classified, accumulating error type used
// across weaveconfig's discovery, parsing, graph, resolution, and
// emission stages. Errors are collected rather than thrown: a stage
// never short-circuits on the first sibling failure.
package wcerror

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into one of the CLI's reporting categories.
type Kind string

const (
	// KindParse covers malformed JSONC.
	KindParse Kind = "parse"

	// KindLocalValidation covers schema mismatches within one space:
	// unique environments, mapping.this membership, unknown top-level
	// keys, generate shape, and a per-env variable file naming an
	// environment the space never declared.
	KindLocalValidation Kind = "local_validation"

	// KindGraph covers unknown dependencies, duplicate space names, and
	// dependency cycles.
	KindGraph Kind = "graph"

	// KindResolution covers shared/per-env conflicts, non-uniform keys,
	// shared/per-env collisions, and unresolvable mapping references.
	KindResolution Kind = "resolution"

	// KindEmission covers fatal I/O failures writing gen/.
	KindEmission Kind = "emission"
)

// Code names a specific failure within a Kind, used for errors.Is
// comparisons and for the CLI's --json error output. It is not part of
// the `<path>: <kind>: <message>` line format.
type Code string

const (
	CodeLocalValidation    Code = "LOCAL_VALIDATION"
	CodeUnknownDependency  Code = "UNKNOWN_DEPENDENCY"
	CodeDuplicateSpace     Code = "DUPLICATE_SPACE_NAME"
	CodeDependencyCycle    Code = "DEPENDENCY_CYCLE"
	CodeSharedConflict     Code = "SHARED_VARIABLE_CONFLICT"
	CodePerEnvConflict     Code = "PER_ENV_CONFLICT"
	CodeNonUniformKey      Code = "NON_UNIFORM_KEY"
	CodeSharedPerEnvCollision Code = "SHARED_PER_ENV_COLLISION"
	CodeUnknownMappingFrom Code = "UNKNOWN_MAPPING_FROM"
	CodeUnknownMappingThis Code = "UNKNOWN_MAPPING_THIS"
	CodeUndeclaredEnvFile  Code = "UNDECLARED_ENV_FILE"
	CodeIO                 Code = "IO_ERROR"
)

// Error is a classified weaveconfig error with enough context to render
// the CLI's `<path>: <kind>: <message>` line.
//
//nolint:revive // Error is intentionally named despite stuttering with the package name.
type Error struct {
	Kind    Kind
	Code    Code
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.unwrapMessage())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.unwrapMessage())
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) unwrapMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Is implements error-class equality for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New builds an Error of the given kind and code.
func New(kind Kind, code Code, path, message string) *Error {
	return &Error{Kind: kind, Code: code, Path: path, Message: message}
}

// Wrap builds an Error of the given kind and code wrapping cause.
func Wrap(kind Kind, code Code, path string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Path: path, Err: cause}
}

// WithMessage overrides the message on an existing Error and returns it.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// List accumulates Errors across spaces/files without short-circuiting
// sibling failures: a failure in one space is recorded and every other
// space still gets the chance to parse, validate, and report its own.
type List struct {
	errs []*Error
}

// Add appends err to the list. A nil err is a no-op.
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// AddAll appends every error in other.
func (l *List) AddAll(other *List) {
	if other == nil {
		return
	}
	l.errs = append(l.errs, other.errs...)
}

// Empty reports whether no errors have been recorded. Emission begins
// only when Empty() is true.
func (l *List) Empty() bool {
	return l == nil || len(l.errs) == 0
}

// Errors returns the accumulated errors in the order they were added.
func (l *List) Errors() []*Error {
	if l == nil {
		return nil
	}
	return l.errs
}

// Lines renders each error as the CLI's `<path>: <kind>: <message>`
// format, one per line, for writing to stderr.
func (l *List) Lines() []string {
	lines := make([]string, 0, len(l.Errors()))
	for _, e := range l.Errors() {
		lines = append(lines, e.Error())
	}
	return lines
}

// Err returns a plain error summarizing the list, or nil if empty. This
// lets List participate in ordinary Go error-returning signatures.
func (l *List) Err() error {
	if l.Empty() {
		return nil
	}
	return fmt.Errorf("%d error(s), first: %s", len(l.errs), l.errs[0].Error())
}
