// Package pyslice extracts a minimal, self-contained Python source slice
// starting from one or more entry function/class definitions: it indexes
// the owning modules, closes the free-name graph reachable from the
// entries, classifies every import the closure pulls in, and renders the
// result as deterministic, directly-runnable source text.
package pyslice

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dvm-shlee/pyslice/internal/acquire"
	"github.com/dvm-shlee/pyslice/internal/classify"
	"github.com/dvm-shlee/pyslice/internal/closure"
	"github.com/dvm-shlee/pyslice/internal/distmap"
	"github.com/dvm-shlee/pyslice/internal/index"
	"github.com/dvm-shlee/pyslice/internal/parser"
	"github.com/dvm-shlee/pyslice/internal/pypi"
	"github.com/dvm-shlee/pyslice/internal/render"
	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// Entry identifies a top-level function or class to isolate, by the module
// that defines it and the name it's bound to at module scope. Path also
// serves as the map key distinguishing one owning module from another, so
// every Entry sharing a Session must also share the same Path.
type Entry struct {
	Path string
	Name string
	// Session, when non-nil, supplies this entry's owning module's source
	// from an interactive session's cell history instead of reading Path
	// from disk.
	Session acquire.SessionProvider
}

// Options controls isolation behavior. The zero value isolates with both
// collapsing behaviors on, imports sorted, dynamic imports kept, and every
// network/subprocess lookup enabled, matching spec defaults of true for
// each boolean knob (Go zero-values default to false, so every flag here
// is named as the opt-out of its default-true behavior).
type Options struct {
	// NoCollapseInnerFunctions keeps function/class definitions nested
	// inside a function body instead of splicing them out at any depth.
	// Defaults to false (collapsing on).
	NoCollapseInnerFunctions bool
	// NoCollapseMethods keeps method bodies verbatim instead of replacing
	// them with a `pass` placeholder. Defaults to false (collapsing on).
	NoCollapseMethods bool
	// NoSortImports renders the import section in first-discovery order
	// instead of sorted. Defaults to false (sorting on).
	NoSortImports bool
	// DropDynamicImports omits dynamic-import assignment statements (e.g.
	// `x = importlib.import_module("pkg")`) from the rendered output; the
	// name they bind is still resolved during closure either way. Defaults
	// to false (dynamic imports kept).
	DropDynamicImports bool
	// RejectStdlibEntry errors instead of isolating when an entry's own
	// module classifies as stdlib.
	RejectStdlibEntry bool
	// OfflinePyPI skips the PyPI existence lookup for names absent from
	// the distribution map, classifying them Unknown instead of
	// ThirdParty.
	OfflinePyPI bool
	// PackageOverrides force a top-level import name to a specific
	// distribution name, skipping both the distribution map and PyPI.
	PackageOverrides map[string]string
	// Warnings receives one line per unbound name found during closure.
	// Defaults to io.Discard when nil.
	Warnings io.Writer
}

// Requirements buckets the top-level module of every reached import.
// OnPyPI holds third-party distribution names: a name found in the
// distribution map is listed without a PyPI lookup, and any other name only
// once PyPI confirms it. Stdlib holds standard-library module names, and
// Unknown holds everything else.
type Requirements struct {
	OnPyPI  []string
	Stdlib  []string
	Unknown []string
}

// Bundle is the result of a successful Isolate call.
type Bundle struct {
	Source       string
	Requirements Requirements
	Unbound      []string
}

// Isolate builds the minimal self-contained source for entries.
func Isolate(ctx context.Context, entries []Entry, opts Options) (*Bundle, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	tsParser, err := parser.NewTreeSitterParser()
	if err != nil {
		return nil, err
	}
	defer tsParser.Close()

	var distinctPaths []string
	seenPaths := make(map[string]bool)
	sessions := make(map[string]acquire.SessionProvider)
	entryNamesByPath := make(map[string][]string)
	var closureEntries []closure.Entry
	for _, e := range entries {
		if !seenPaths[e.Path] {
			seenPaths[e.Path] = true
			distinctPaths = append(distinctPaths, e.Path)
		}
		if e.Session != nil {
			sessions[e.Path] = e.Session
		}
		entryNamesByPath[e.Path] = append(entryNamesByPath[e.Path], e.Name)
		closureEntries = append(closureEntries, closure.Entry{ModulePath: e.Path, Name: e.Name})
	}

	// Distinct entry modules are indexed concurrently: parsing is the only
	// shared resource and TreeSitterParser already serializes it internally,
	// so fanning the indexModule calls out over an errgroup overlaps file
	// reads and index-building across files without extra synchronization
	// beyond the map writes guarded below.
	idxOpts := index.Options{
		CollapseInnerFunctions: !opts.NoCollapseInnerFunctions,
		CollapseMethods:        !opts.NoCollapseMethods,
	}

	indexes := make(map[string]*pytypes.ModuleIndex, len(distinctPaths))
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for _, path := range distinctPaths {
		path := path
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			idx, err := indexModule(tsParser, path, idxOpts, sessions[path], entryNamesByPath[path])
			if err != nil {
				return err
			}
			mu.Lock()
			indexes[path] = idx
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dist := buildDistMap(entries, opts)

	if opts.RejectStdlibEntry {
		for _, e := range entries {
			stem := moduleStem(e.Path)
			class, _ := classify.Classify(stem, false, dist, nil)
			if class == classify.Stdlib {
				return nil, ErrRejectedStdlibEntry
			}
		}
	}

	report, err := closure.Run(indexes, closureEntries)
	if err != nil {
		return nil, err
	}

	warnings := opts.Warnings
	if warnings == nil {
		warnings = io.Discard
	}
	source := render.Render(report, render.Options{
		SortImports:        !opts.NoSortImports,
		KeepDynamicImports: !opts.DropDynamicImports,
		Warnings:           warnings,
	})

	requirements := classifyRequirements(report, dist, opts)

	return &Bundle{
		Source:       source,
		Requirements: requirements,
		Unbound:      dedupSorted(report.Unbound),
	}, nil
}

func indexModule(tsParser *parser.TreeSitterParser, path string, idxOpts index.Options, session acquire.SessionProvider, entryNames []string) (*pytypes.ModuleIndex, error) {
	var source string
	var err error
	if session != nil {
		source, err = acquire.FromSession(tsParser, session, entryNames)
	} else {
		source, err = acquire.FromFile(path)
	}
	if err != nil {
		return nil, err
	}
	pf, err := tsParser.ParseModule(path, []byte(source))
	if err != nil {
		return nil, err
	}
	defer pf.Tree.Close()

	root := parser.EffectiveRoot(pf.Tree.RootNode())
	return index.Build(path, root, pf.Content, idxOpts), nil
}

func buildDistMap(entries []Entry, opts Options) map[string]string {
	var dirs []string
	for _, e := range entries {
		dirs = append(dirs, filepath.Dir(e.Path))
	}

	maps := []map[string]string{distmap.KnownOverrides(), distmap.FromInterpreter(context.Background())}
	for _, d := range dedupSorted(dirs) {
		maps = append(maps, distmap.FromPyproject(d))
	}
	maps = append(maps, opts.PackageOverrides)
	return distmap.Merge(maps...)
}

func classifyRequirements(report *pytypes.Report, dist map[string]string, opts Options) Requirements {
	var oracle classify.PyPIChecker
	if !opts.OfflinePyPI {
		oracle = pypi.NewOracle()
	}

	seen := make(map[string]bool)
	var req Requirements
	for _, aliases := range report.Imports {
		for _, item := range aliases {
			if seen[item.Module] {
				continue
			}
			seen[item.Module] = true

			class, pkg := classify.Classify(item.Module, false, dist, oracle)
			switch class {
			case classify.Stdlib:
				req.Stdlib = append(req.Stdlib, pkg)
			case classify.ThirdParty:
				req.OnPyPI = append(req.OnPyPI, pkg)
			case classify.Unknown, classify.Local:
				req.Unknown = append(req.Unknown, pkg)
			}
		}
	}

	sort.Strings(req.OnPyPI)
	sort.Strings(req.Stdlib)
	sort.Strings(req.Unknown)
	return req
}

func dedupSorted(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// moduleStem returns a file path's base name without its extension, the
// name it would bind to if imported as a top-level module.
func moduleStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
