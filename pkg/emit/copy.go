package emit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// variableRef matches `{{ name }}` with optional surrounding whitespace;
// the escape `\{{` is stripped out before this regexp runs and restored
// afterward, so an author can write a literal `{{` in a copied file.
var variableRef = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

const escapeSentinel = "\x00WEAVECONFIG_ESCAPED_BRACE\x00"

// CopyFiles runs the file copier for one space. Every file gets one
// shared-only substitution pass written under genDir, preserving its
// path relative to the space directory; additionally, any file whose
// `{{ var }}` references include a name absent from shared gets one
// more pass per environment, written under genDir/<env>.
func CopyFiles(fs afero.Fs, genDir, spacePath string, files []discover.CopyFileRef, rs *resolver.ResolvedSpace, environments []string) *wcerror.List {
	errs := &wcerror.List{}
	for _, f := range files {
		raw, err := afero.ReadFile(fs, f.SourcePath)
		if err != nil {
			errs.Add(wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, spacePath, fmt.Errorf("read %s: %w", f.SourcePath, err)))
			continue
		}
		text := string(raw)

		sharedOut, unresolved := substitute(text, rs.Shared, nil)
		destPath := genDir + "/" + f.RelPath
		if err := writeCopied(fs, destPath, sharedOut); err != nil {
			errs.Add(wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, spacePath, err))
			continue
		}

		if len(unresolved) == 0 {
			continue
		}
		for _, env := range environments {
			out, _ := substitute(text, rs.Shared, rs.PerEnvironment[env])
			envPath := genDir + "/" + env + "/" + f.RelPath
			if err := writeCopied(fs, envPath, out); err != nil {
				errs.Add(wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, spacePath, err))
			}
		}
	}
	return errs
}

func writeCopied(fs afero.Fs, path, contents string) error {
	dir := path[:strings.LastIndex(path, "/")]
	if dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// substitute resolves `{{ name }}` references against shared first, then
// env (if non-nil), leaving unresolved references untouched and
// reporting their names so the caller can decide whether a per-env pass
// is needed.
func substitute(text string, shared, env *jsonc.Object) (string, []string) {
	escaped := strings.ReplaceAll(text, `\{{`, escapeSentinel)

	var unresolved []string
	out := variableRef.ReplaceAllStringFunc(escaped, func(match string) string {
		name := variableRef.FindStringSubmatch(match)[1]
		if v, ok := lookupPath(shared, name); ok {
			return v.AsString()
		}
		if v, ok := lookupPath(env, name); ok {
			return v.AsString()
		}
		unresolved = append(unresolved, name)
		return match
	})

	out = strings.ReplaceAll(out, escapeSentinel, "{{")
	return out, unresolved
}

func lookupPath(obj *jsonc.Object, dotted string) (jsonc.Value, bool) {
	if obj == nil {
		return jsonc.Value{}, false
	}
	segments := strings.Split(dotted, ".")
	current := obj
	for i, seg := range segments {
		v, ok := current.Get(seg)
		if !ok {
			return jsonc.Value{}, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		if v.Kind != jsonc.KindObject {
			return jsonc.Value{}, false
		}
		current = v.Object
	}
	return jsonc.Value{}, false
}
