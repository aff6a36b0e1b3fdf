package emit

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// GitignoreContents is written verbatim to gen/.gitignore: the gen/
// tree is entirely generated, so nothing under it is tracked.
const GitignoreContents = "*\n"

// WriteConfig writes gen/config.json: a single object keyed by the
// space's declared environments (each holding that environment's merged
// variable map) plus a top-level "shared" object — shared keys
// appear both at root and inside every environment's own object.
func WriteConfig(fs afero.Fs, genDir string, decl *spacefile.SpaceDecl, rs *resolver.ResolvedSpace) *wcerror.Error {
	root := jsonc.NewObject()
	root.Set("shared", jsonc.NewObjectValue(nonNilObject(rs.Shared)))
	for _, env := range decl.Environments {
		root.Set(env, jsonc.NewObjectValue(nonNilObject(rs.PerEnvironment[env])))
	}

	body, err := jsonc.NewObjectValue(root).MarshalIndent("", "  ")
	if err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("marshal config.json: %w", err))
	}

	if err := fs.MkdirAll(genDir, 0o755); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("create %s: %w", genDir, err))
	}
	configPath := genDir + "/config.json"
	if err := afero.WriteFile(fs, configPath, body, 0o644); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("write %s: %w", configPath, err))
	}

	gitignorePath := genDir + "/.gitignore"
	if err := afero.WriteFile(fs, gitignorePath, []byte(GitignoreContents), 0o644); err != nil {
		return wcerror.Wrap(wcerror.KindEmission, wcerror.CodeIO, decl.Path, fmt.Errorf("write %s: %w", gitignorePath, err))
	}
	return nil
}

func nonNilObject(o *jsonc.Object) *jsonc.Object {
	if o == nil {
		return jsonc.NewObject()
	}
	return o
}
