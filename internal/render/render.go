// Package render turns a closure Report into the final, deterministic
// Python source text: an optional TYPE_CHECKING block, then imports, then
// variables, then definitions. Imports are deduplicated by statement text,
// variables keep their discovery order within each module (modules in
// lexical order), and definitions list classes before functions.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// Options controls rendering behavior.
type Options struct {
	// SortImports, when true (the default), renders the import section
	// alphabetically by module then by statement text. When false, imports
	// are rendered in first-discovery order instead, per Report.ImportOrder.
	SortImports bool
	// KeepDynamicImports, when true (the default), renders dynamic-import
	// assignment statements (e.g. `x = importlib.import_module("pkg")`)
	// alongside static imports. When false, the statement is omitted but
	// the name it binds still counts as resolved.
	KeepDynamicImports bool
	// Warnings receives one line per unbound name, mirroring the original
	// tool's stderr diagnostics. Nil disables the side channel.
	Warnings io.Writer
}

// Render produces the final source text for a Report.
func Render(report *pytypes.Report, opts Options) string {
	var sections []string

	// The TYPE_CHECKING block opens with `from __future__ import
	// annotations`, which Python accepts only at the top of a file.
	if typeChecking := renderTypeChecking(report); typeChecking != "" {
		sections = append(sections, typeChecking)
	}
	if imports := renderImports(report, opts); imports != "" {
		sections = append(sections, imports)
	}
	if vars := renderVars(report); vars != "" {
		sections = append(sections, vars)
	}
	if defs := renderDefs(report); defs != "" {
		sections = append(sections, defs)
	}

	emitWarnings(report, opts.Warnings)

	out := strings.Join(sections, "\n\n")
	return strings.TrimRight(out, "\n") + "\n"
}

type importLine struct {
	dynamic bool
	module  string
	code    string
}

func renderImports(report *pytypes.Report, opts Options) string {
	seen := make(map[string]bool)
	var lines []importLine

	add := func(item *pytypes.ImportItem) {
		if item.IsDynamic && !opts.KeepDynamicImports {
			return
		}
		if seen[item.Code] {
			return
		}
		seen[item.Code] = true
		lines = append(lines, importLine{item.IsDynamic, item.Module, item.Code})
	}

	if opts.SortImports {
		for _, aliases := range report.Imports {
			for _, item := range aliases {
				add(item)
			}
		}
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].dynamic != lines[j].dynamic {
				return !lines[i].dynamic
			}
			if lines[i].module != lines[j].module {
				return lines[i].module < lines[j].module
			}
			return lines[i].code < lines[j].code
		})
	} else {
		for _, ref := range report.ImportOrder {
			aliases := report.Imports[ref.ModulePath]
			if aliases == nil {
				continue
			}
			if item, ok := aliases[ref.Alias]; ok {
				add(item)
			}
		}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.code)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTypeChecking reconstructs the names routed to Report.TypeHints as a
// single `from __future__ import annotations` / `from typing import
// TYPE_CHECKING` header followed by a guarded block that re-imports each
// name from the module it originally came from, grouping names sharing a
// (relative level, module) pair onto one from-import line.
func renderTypeChecking(report *pytypes.Report) string {
	if len(report.TypeHints) == 0 {
		return ""
	}

	type fromKey struct {
		level  int
		module string
	}
	fromSpecs := make(map[fromKey][]string)
	var plainLines []string

	for alias, item := range report.TypeHints {
		switch {
		case item.UseStar:
			key := fromKey{level: item.Level, module: item.FromModule}
			fromSpecs[key] = append(fromSpecs[key], "*")
		case item.FromModule != "" || item.Level > 0:
			key := fromKey{level: item.Level, module: item.FromModule}
			spec := item.ImportedName
			if spec == "" {
				spec = alias
			}
			if alias != spec {
				spec = spec + " as " + alias
			}
			fromSpecs[key] = append(fromSpecs[key], spec)
		default:
			name := item.ImportedName
			if name == "" {
				name = alias
			}
			if alias != name {
				plainLines = append(plainLines, fmt.Sprintf("import %s as %s", name, alias))
			} else {
				plainLines = append(plainLines, fmt.Sprintf("import %s", name))
			}
		}
	}

	var lines []string
	for key, specs := range fromSpecs {
		sort.Strings(specs)
		module := strings.Repeat(".", key.level) + key.module
		lines = append(lines, fmt.Sprintf("from %s import %s", module, strings.Join(specs, ", ")))
	}
	lines = append(lines, plainLines...)
	sort.Strings(lines)

	var b strings.Builder
	b.WriteString("from __future__ import annotations\n")
	b.WriteString("from typing import TYPE_CHECKING\n")
	b.WriteString("if TYPE_CHECKING:\n")
	for _, l := range lines {
		b.WriteString("    ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderVars(report *pytypes.Report) string {
	modules := make([]string, 0, len(report.Vars))
	for m := range report.Vars {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	var b strings.Builder
	for _, m := range modules {
		for _, v := range report.Vars[m] {
			b.WriteString(v.Code)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDefs(report *pytypes.Report) string {
	defs := append([]*pytypes.DefItem(nil), report.DefItems...)
	sort.SliceStable(defs, func(i, j int) bool {
		iClass := defs[i].Kind == pytypes.KindClass
		jClass := defs[j].Kind == pytypes.KindClass
		if iClass != jClass {
			return iClass
		}
		return false
	})

	var b strings.Builder
	for i, d := range defs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimRight(d.Pruned, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func emitWarnings(report *pytypes.Report, w io.Writer) {
	if w == nil || len(report.Unbound) == 0 {
		return
	}
	seen := make(map[string]bool)
	names := make([]string, 0, len(report.Unbound))
	for _, u := range report.Unbound {
		if seen[u] {
			continue
		}
		seen[u] = true
		names = append(names, u)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "warning: unbound name %s\n", n)
	}
}
