package pipeline

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/emit"
	"github.com/weaveconfig/weaveconfig/pkg/jsonc"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// buildInputs reads and parses every discovered space's variable files
// into the SpaceInput the resolver consumes, keyed by space name so it
// lines up with graph.Graph's name-keyed Order. Parse errors are
// collected across every space before returning, matching parseAll's
// never-short-circuit-siblings behaviour.
func buildInputs(opts Options, files []discover.SpaceFiles, decls []*spacefile.SpaceDecl) (map[string]*resolver.SpaceInput, *wcerror.List) {
	errs := &wcerror.List{}

	nameByDir := make(map[string]string, len(decls))
	declByDir := make(map[string]*spacefile.SpaceDecl, len(decls))
	for _, d := range decls {
		nameByDir[d.Path] = d.Name
		declByDir[d.Path] = d
	}

	inputs := make(map[string]*resolver.SpaceInput, len(files))

	for _, sf := range files {
		if sf.MarkerPath == "" {
			continue
		}
		name, ok := nameByDir[sf.Dir]
		if !ok {
			continue // marker failed to parse; already reported by parseAll
		}
		decl := declByDir[sf.Dir]

		input := &resolver.SpaceInput{
			PerEnv:     make(map[string]*jsonc.Object),
			PerEnvFile: make(map[string]string),
		}

		for _, ref := range sf.Variables {
			if ref.Env != "" && !decl.HasEnvironment(ref.Env) {
				errs.Add(wcerror.New(wcerror.KindLocalValidation, wcerror.CodeUndeclaredEnvFile, ref.Path,
					fmt.Sprintf("variable file names environment %q, which %q does not declare in environments", ref.Env, name)))
				continue
			}

			raw, err := afero.ReadFile(opts.Fs, ref.Path)
			if err != nil {
				errs.Add(wcerror.Wrap(wcerror.KindParse, wcerror.CodeIO, ref.Path, err))
				continue
			}

			contents, perr := spacefile.ParseVariableFile(ref.Path, ref.Env, raw)
			if perr != nil {
				errs.Add(perr)
				continue
			}

			if ref.Env == "" {
				input.Shared = contents.Root
				input.SharedFile = ref.Path
				continue
			}
			input.PerEnv[ref.Env] = contents.Root
			input.PerEnvFile[ref.Env] = ref.Path
		}

		inputs[name] = input
	}

	return inputs, errs
}

// emitAll runs stage 5 for every discovered space whose generation is
// enabled, plus the copy emitter for every space regardless of
// Generate, since copied files are part of the space's own output tree
// independent of config.json/binding.ts.
func emitAll(opts Options, decls []*spacefile.SpaceDecl, tree *resolver.ResolvedTree, files []discover.SpaceFiles) *wcerror.List {
	errs := &wcerror.List{}

	copyFilesByDir := make(map[string][]discover.CopyFileRef, len(files))
	for _, sf := range files {
		copyFilesByDir[sf.Dir] = sf.CopyFiles
	}

	emitter := emit.New(opts.Fs)
	for _, decl := range decls {
		rs := tree.Spaces[decl.Name]
		if rs == nil {
			continue
		}
		errs.AddAll(emitter.Emit(decl, rs, copyFilesByDir[decl.Path]))
	}

	return errs
}
