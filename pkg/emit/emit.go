package emit

import (
	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// Emitter writes a resolved space's generated artifacts to fs. A
// single Emitter is reused across every space in a resolution run.
type Emitter struct {
	Fs afero.Fs
}

// New builds an Emitter backed by fs.
func New(fs afero.Fs) *Emitter {
	return &Emitter{Fs: fs}
}

// Emit writes config.json/.gitignore (always, when decl.Generate is
// enabled), binding.ts (when decl.Generate.TypeScript), and copies
// files, for one space. config.json and binding.ts are not written for
// a space whose Generate is disabled; its copy files are still copied
// under gen/, and its variables are still eligible as dependency
// sources for other spaces' resolution — emission and resolution are
// decoupled stages.
func (e *Emitter) Emit(decl *spacefile.SpaceDecl, rs *resolver.ResolvedSpace, copyFiles []discover.CopyFileRef) *wcerror.List {
	errs := &wcerror.List{}
	genDir := decl.Path + "/gen"

	if decl.Generate.Enabled {
		if err := WriteConfig(e.Fs, genDir, decl, rs); err != nil {
			errs.Add(err)
		}
		if decl.Generate.TypeScript {
			if err := WriteBinding(e.Fs, genDir, decl, rs); err != nil {
				errs.Add(err)
			}
		}
	}

	errs.AddAll(CopyFiles(e.Fs, genDir, decl.Path, copyFiles, rs, decl.Environments))
	return errs
}
