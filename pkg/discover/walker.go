package discover

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// Walker discovers spaces under a weaveconfig root: a single afero.Fs
// is walked once, per-file errors are collected rather than aborting
// the whole walk, and results are returned in a deterministic order.
type Walker struct {
	fs afero.Fs
}

// NewWalker creates a Walker over fs. Production callers pass
// afero.NewOsFs(); tests pass afero.NewMemMapFs().
func NewWalker(fs afero.Fs) *Walker {
	return &Walker{fs: fs}
}

// Discover walks root and returns one SpaceFiles per directory
// containing a _space.jsonc marker, sorted by directory path so
// downstream graph construction has a deterministic tiebreaker.
func (w *Walker) Discover(root string) ([]SpaceFiles, *wcerror.List) {
	errs := &wcerror.List{}

	spaceDirs, files, err := w.scan(root)
	if err != nil {
		errs.Add(wcerror.Wrap(wcerror.KindParse, wcerror.CodeIO, root, err))
		return nil, errs
	}

	bySpace := make(map[string]*SpaceFiles, len(spaceDirs))
	for dir := range spaceDirs {
		bySpace[dir] = &SpaceFiles{Dir: dir}
	}

	for _, f := range files {
		owner := nearestSpace(filepath.Dir(f), spaceDirs)
		if owner == "" {
			continue // orphan file outside any space; not this tool's concern
		}

		base := filepath.Base(f)
		rel, relErr := filepath.Rel(owner, f)
		if relErr != nil {
			continue
		}

		if filepath.Dir(f) == owner && base == spacefile.MarkerFileName {
			sf := bySpace[owner]
			sf.MarkerPath = f
			raw, rerr := afero.ReadFile(w.fs, f)
			if rerr != nil {
				errs.Add(wcerror.Wrap(wcerror.KindParse, wcerror.CodeIO, f, rerr))
				continue
			}
			sf.MarkerRaw = raw
			continue
		}

		role, env, copyAs := spacefile.ClassifyFile(base)
		sf := bySpace[owner]
		switch role {
		case spacefile.RoleSharedVars:
			if filepath.Dir(f) != owner {
				continue // variable files never cross space boundaries
			}
			sf.Variables = append(sf.Variables, VariableFileRef{Path: f, Env: ""})
		case spacefile.RoleEnvVars:
			if filepath.Dir(f) != owner {
				continue
			}
			sf.Variables = append(sf.Variables, VariableFileRef{Path: f, Env: env})
		case spacefile.RoleReservedUnknown:
			// Reserved but unrecognized: neither parsed nor copied.
		case spacefile.RoleCopy:
			relDir := filepath.Dir(rel)
			relCopy := copyAs
			if relDir != "." {
				relCopy = filepath.Join(relDir, copyAs)
			}
			sf.CopyFiles = append(sf.CopyFiles, CopyFileRef{SourcePath: f, RelPath: relCopy})
		}
	}

	out := make([]SpaceFiles, 0, len(bySpace))
	for _, sf := range bySpace {
		out = append(out, *sf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dir < out[j].Dir })

	for i := range out {
		sort.Slice(out[i].Variables, func(a, b int) bool {
			return out[i].Variables[a].Path < out[i].Variables[b].Path
		})
		sort.Slice(out[i].CopyFiles, func(a, b int) bool {
			return out[i].CopyFiles[a].RelPath < out[i].CopyFiles[b].RelPath
		})
	}

	return out, errs
}

// scan walks root once, returning the set of directories containing a
// space marker and the flat list of every regular file found.
func (w *Walker) scan(root string) (map[string]bool, []string, error) {
	spaceDirs := make(map[string]bool)
	var files []string

	err := afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files = append(files, path)
		if filepath.Base(path) == spacefile.MarkerFileName {
			spaceDirs[filepath.Dir(path)] = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return spaceDirs, files, nil
}

// nearestSpace walks up from dir (inclusive) until it finds a directory
// in spaceDirs. Returns "" if no ancestor is a space.
func nearestSpace(dir string, spaceDirs map[string]bool) string {
	for {
		if spaceDirs[dir] {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ParentSpace returns the nearest ancestor of dir (exclusive) that is
// itself a space directory, or "" if dir is the root space. spaceDirs
// must contain every discovered space's Dir.
func ParentSpace(dir string, spaceDirs map[string]bool) string {
	parent := filepath.Dir(dir)
	if parent == dir {
		return ""
	}
	return nearestSpace(parent, spaceDirs)
}
