package pipeline

import (
	"context"

	"github.com/spf13/afero"

	"github.com/weaveconfig/weaveconfig/pkg/discover"
	"github.com/weaveconfig/weaveconfig/pkg/graph"
	"github.com/weaveconfig/weaveconfig/pkg/resolver"
	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
	"github.com/weaveconfig/weaveconfig/pkg/telemetry"
	"github.com/weaveconfig/weaveconfig/pkg/wcerror"
)

// Options configures one pipeline run.
type Options struct {
	// Fs backs every filesystem access. Production callers pass
	// afero.NewOsFs(); tests pass afero.NewMemMapFs().
	Fs afero.Fs

	// Root is the absolute path to the weaveconfig workspace root.
	Root string

	// Emit runs stage 5 (writing gen/ trees) when true. `validate`
	// passes false to stop after resolution.
	Emit bool

	// Features gates resolver behaviour not part of the current marker
	// schema.
	Features resolver.Features

	// Telemetry is optional; when nil, stages run uninstrumented.
	Telemetry *telemetry.Telemetry
}

// Result is one run's outcome.
type Result struct {
	Graph *graph.Graph
	Tree  *resolver.ResolvedTree

	SpacesDiscovered int
}

// Run executes discover -> parse -> graph -> resolve -> (emit), stopping
// at the first stage with errors: a later stage never runs against an
// incomplete result from an earlier one.
func Run(ctx context.Context, opts Options) (*Result, *wcerror.List) {
	result := &Result{}

	var files []discover.SpaceFiles
	discoverErrs := stage(ctx, opts, "discover", func() *wcerror.List {
		walker := discover.NewWalker(opts.Fs)
		found, derrs := walker.Discover(opts.Root)
		files = found
		result.SpacesDiscovered = len(found)
		if opts.Telemetry != nil {
			opts.Telemetry.Metrics.SetSpacesDiscovered(len(found))
		}
		return derrs
	})
	if !discoverErrs.Empty() {
		return nil, discoverErrs
	}

	decls, spaceDirs, parseErrs := parseAll(files)
	if !parseErrs.Empty() {
		return nil, parseErrs
	}

	var g *graph.Graph
	graphErrs := stage(ctx, opts, "graph", func() *wcerror.List {
		var gerrs *wcerror.List
		g, gerrs = graph.NewBuilder().Build(decls, spaceDirs)
		if opts.Telemetry != nil {
			for _, e := range gerrs.Errors() {
				if e.Code == wcerror.CodeDependencyCycle {
					opts.Telemetry.Metrics.RecordCycleDetected()
				}
			}
		}
		return gerrs
	})
	if !graphErrs.Empty() {
		return nil, graphErrs
	}
	result.Graph = g

	inputs, inputErrs := buildInputs(opts, files, decls)
	if !inputErrs.Empty() {
		return nil, inputErrs
	}

	var tree *resolver.ResolvedTree
	resolveErrs := stage(ctx, opts, "resolve", func() *wcerror.List {
		var rerrs *wcerror.List
		tree, rerrs = resolver.New(opts.Features).Resolve(g, inputs)
		if opts.Telemetry != nil {
			for _, e := range rerrs.Errors() {
				opts.Telemetry.Metrics.RecordConflict(string(e.Code))
			}
		}
		return rerrs
	})
	if !resolveErrs.Empty() {
		return nil, resolveErrs
	}
	result.Tree = tree

	if !opts.Emit {
		return result, &wcerror.List{}
	}

	emitErrs := stage(ctx, opts, "emit", func() *wcerror.List {
		return emitAll(opts, decls, tree, files)
	})
	if !emitErrs.Empty() {
		return nil, emitErrs
	}

	return result, &wcerror.List{}
}

// stage runs fn under a stage span/timer when telemetry is present, and
// reports its error count through the metrics/logging it carries.
func stage(ctx context.Context, opts Options, name string, fn func() *wcerror.List) *wcerror.List {
	if opts.Telemetry == nil {
		return fn()
	}

	stageCtx := telemetry.WithStageContext(ctx, name)
	errs := fn()
	telemetry.EndStageContext(stageCtx, name, errs.Err())

	logger := telemetry.FromContext(stageCtx)
	for _, e := range errs.Errors() {
		opts.Telemetry.Metrics.RecordError(string(e.Kind), string(e.Code))
		logger.WithError(e).Error(e.Error())
	}
	return errs
}

// parseAll parses every discovered space's marker, keying the graph's
// directory-containment index by directory.
func parseAll(files []discover.SpaceFiles) ([]*spacefile.SpaceDecl, map[string]bool, *wcerror.List) {
	errs := &wcerror.List{}
	decls := make([]*spacefile.SpaceDecl, 0, len(files))
	spaceDirs := make(map[string]bool, len(files))

	for _, sf := range files {
		if sf.MarkerPath == "" {
			continue // directory walked but no marker found at it directly
		}
		decl, err := spacefile.ParseMarker(sf.MarkerPath, sf.MarkerRaw)
		if err != nil {
			errs.Add(err)
			continue
		}
		decl.Path = sf.Dir
		decls = append(decls, decl)
		spaceDirs[sf.Dir] = true
	}
	return decls, spaceDirs, errs
}
