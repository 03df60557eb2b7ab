// Package closure computes the transitive reachability closure of a set of
// entry definitions over their module indexes: which imports, variables,
// and sibling top-level definitions are actually needed to make the entries
// self-contained.
package closure

import (
	"fmt"
	"sort"

	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// Entry identifies one root to close over: a top-level function or class
// name inside a given module.
type Entry struct {
	ModulePath string
	Name       string
}

// ExternalEntry is returned when an Entry names a module that was not
// supplied in the index map, or a name the named module doesn't define.
type ExternalEntry struct {
	ModulePath string
	Name       string
}

func (e *ExternalEntry) Error() string {
	return fmt.Sprintf("entry %s:%s is not a known top-level definition", e.ModulePath, e.Name)
}

type workItem struct {
	modulePath string
	name       string
}

// Run walks the free-name graph starting from entries, breadth-first,
// accumulating a Report of everything reached. Each Entry's module must
// have a corresponding index in indexes. Cycles are safe: a (module, name)
// pair is only ever enqueued once.
func Run(indexes map[string]*pytypes.ModuleIndex, entries []Entry) (*pytypes.Report, error) {
	report := pytypes.NewReport()
	seen := make(map[string]bool)
	annotationOnlyUse := make(map[string]bool)
	nonAnnotationUse := make(map[string]bool)

	var queue []workItem
	for _, e := range entries {
		idx, ok := indexes[e.ModulePath]
		if !ok {
			return nil, &ExternalEntry{ModulePath: e.ModulePath, Name: e.Name}
		}
		if _, ok := idx.Defs[e.Name]; !ok {
			return nil, &ExternalEntry{ModulePath: e.ModulePath, Name: e.Name}
		}
		key := e.ModulePath + ":" + e.Name
		if !seen[key] {
			seen[key] = true
			queue = append(queue, workItem{e.ModulePath, e.Name})
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		idx := indexes[item.modulePath]
		if idx == nil {
			continue
		}

		def, ok := idx.Defs[item.name]
		if !ok {
			continue
		}
		report.DefItems = append(report.DefItems, def)

		names := make([]string, 0, len(def.FreeNames))
		for name := range def.FreeNames {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if def.TypeOnly[name] {
				annotationOnlyUse[name] = true
			} else {
				nonAnnotationUse[name] = true
			}
			resolveName(indexes, item.modulePath, name, report, seen, &queue)
		}
	}

	for name := range annotationOnlyUse {
		if nonAnnotationUse[name] {
			continue
		}
		for modulePath, aliases := range report.Imports {
			if item, ok := aliases[name]; ok {
				report.TypeHints[name] = item
				delete(aliases, name)
				if len(aliases) == 0 {
					delete(report.Imports, modulePath)
				}
				break
			}
		}
	}

	return report, nil
}

func resolveName(indexes map[string]*pytypes.ModuleIndex, modulePath, name string, report *pytypes.Report, seen map[string]bool, queue *[]workItem) {
	idx := indexes[modulePath]
	if idx == nil {
		return
	}

	if imp, ok := idx.Imports[name]; ok {
		if report.Imports[modulePath] == nil {
			report.Imports[modulePath] = make(map[string]*pytypes.ImportItem)
		}
		report.Imports[modulePath][name] = imp
		key := modulePath + ":import:" + name
		if !seen[key] {
			seen[key] = true
			report.ImportOrder = append(report.ImportOrder, pytypes.ImportRef{ModulePath: modulePath, Alias: name})
		}
		return
	}

	if v, ok := idx.Vars[name]; ok {
		key := modulePath + ":var:" + name
		if !seen[key] {
			seen[key] = true
			report.Vars[modulePath] = append(report.Vars[modulePath], v)
			inner := make([]string, 0, len(v.FreeNames))
			for n := range v.FreeNames {
				inner = append(inner, n)
			}
			sort.Strings(inner)
			for _, n := range inner {
				resolveName(indexes, modulePath, n, report, seen, queue)
			}
		}
		return
	}

	if _, ok := idx.Defs[name]; ok {
		key := modulePath + ":" + name
		if !seen[key] {
			seen[key] = true
			*queue = append(*queue, workItem{modulePath, name})
		}
		return
	}

	// A name nothing else binds is credited to the module's star imports.
	var stars []string
	for alias, imp := range idx.Imports {
		if imp.UseStar {
			stars = append(stars, alias)
		}
	}
	if len(stars) > 0 {
		sort.Strings(stars)
		for _, alias := range stars {
			resolveName(indexes, modulePath, alias, report, seen, queue)
		}
		return
	}

	report.Unbound = append(report.Unbound, fmt.Sprintf("%s:%s", modulePath, name))
}
