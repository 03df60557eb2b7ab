// Package pytypes holds the data model shared across pyslice's pipeline
// stages: the catalogs built while indexing a Python module, and the report
// produced by closing them over a set of entries.
package pytypes

// DefKind distinguishes the three top-level definition shapes pyslice tracks.
type DefKind int

const (
	KindFunction DefKind = iota
	KindAsyncFunction
	KindClass
)

// String returns the human-readable name for a DefKind.
func (k DefKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindAsyncFunction:
		return "async-function"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// ImportItem represents one import statement or dynamic-import assignment
// found at module top-level.
type ImportItem struct {
	Names        map[string]string // local alias -> original dotted name
	Module       string            // top-level module segment ("a" in "a.b.c")
	Submodule    string            // remainder after the first dot, if any
	FromModule   string            // full dotted module of a `from X import ...` statement, "" for a plain import
	ImportedName string            // bare name as imported, pre-alias ("Foo" in "from x import Foo as Bar")
	Code         string            // verbatim source text of the statement
	Level        int               // relative-import dot count (0 = absolute)
	IsDynamic    bool
	UseStar      bool
}

// DefItem is a top-level function or class definition.
type DefItem struct {
	Name       string
	Kind       DefKind
	Source     string          // verbatim captured source of the original definition
	Pruned     string          // rendered source with nested defs spliced out
	FreeNames  map[string]bool // free names referenced anywhere in the original body
	TypeOnly   map[string]bool // names referenced only in annotation position
	Bases      []string        // class base-class expressions (source text)
	Keywords   []string        // class keyword expressions, e.g. metaclass=...
	Decorators []string        // decorator expressions (source text)
}

// VarsItem is a top-level assignment `NAME = expr`.
type VarsItem struct {
	Name      string
	Code      string
	FreeNames map[string]bool
}

// ModuleIndex aggregates the catalogs built for one module by a single
// indexing pass. It is built once per distinct module and treated as
// immutable afterward.
type ModuleIndex struct {
	ModulePath string
	Source     string
	Imports    map[string]*ImportItem // alias -> item
	Defs       map[string]*DefItem    // name -> item
	Vars       map[string]*VarsItem   // name -> item
}

// NewModuleIndex returns an empty, ready-to-populate ModuleIndex.
func NewModuleIndex(modulePath, source string) *ModuleIndex {
	return &ModuleIndex{
		ModulePath: modulePath,
		Source:     source,
		Imports:    make(map[string]*ImportItem),
		Defs:       make(map[string]*DefItem),
		Vars:       make(map[string]*VarsItem),
	}
}

// Report is the output of reachability closure: the subset of a
// ModuleIndex's catalogs reachable from a set of entries, plus bookkeeping
// for names that could not be resolved.
type Report struct {
	// Imports is keyed by owning module path, then by alias, mirroring the
	// Python implementation's module-scoped import bucketing.
	Imports map[string]map[string]*ImportItem
	// Vars is keyed by owning module path, in first-discovery order.
	Vars map[string][]*VarsItem
	// DefItems holds every reached definition, in first-discovery order.
	DefItems []*DefItem
	// Unbound holds "modulePath:name" strings for names the closure could
	// not bind to anything.
	Unbound []string
	// TypeHints maps a name used only in annotation position to the
	// ImportItem that originally bound it, so rendering can reconstruct a
	// `from <module> import <name> [as <alias>]` line guarded by
	// TYPE_CHECKING instead of a plain import.
	TypeHints map[string]*ImportItem
	// ImportOrder records, across every owning module, the (modulePath,
	// alias) pair of each import the first time closure resolves a name to
	// it. Rendering consults this when import order must mirror discovery
	// order rather than a sorted one.
	ImportOrder []ImportRef
}

// ImportRef names one entry in Report.Imports by its owning module path and
// local alias.
type ImportRef struct {
	ModulePath string
	Alias      string
}

// NewReport returns an empty Report ready for accumulation.
func NewReport() *Report {
	return &Report{
		Imports:   make(map[string]map[string]*ImportItem),
		Vars:      make(map[string][]*VarsItem),
		TypeHints: make(map[string]*ImportItem),
	}
}
