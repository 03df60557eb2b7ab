// Package output renders isolate results to terminal, JSON, and badge
// formats.
//
// Terminal rendering uses hierarchical display with automatic color encoding
// (green/yellow/red) based on import resolution. Colors convey requirement
// health at a glance without requiring users to read the full list. NO_COLOR
// environment variable support (via fatih/color's automatic TTY detection)
// ensures compatibility with piped output, CI/CD pipelines, and accessibility
// tools.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

// RenderSource writes the isolated source text to w, adding a trailing
// newline when it lacks one, so it can be piped directly into a file or
// interpreter.
func RenderSource(w io.Writer, bundle *pyslice.Bundle) {
	if bundle == nil {
		return
	}
	fmt.Fprint(w, bundle.Source)
	if len(bundle.Source) == 0 || bundle.Source[len(bundle.Source)-1] != '\n' {
		fmt.Fprintln(w)
	}
}

// RenderRequirements prints a formatted summary of the third-party,
// stdlib, and unresolved import requirements pulled in by the slice.
//
// Color is automatically disabled when w is not a TTY (e.g., piped output),
// which prevents ANSI escape codes from corrupting piped data while still
// giving the interactive user a quick read on which requirements need a
// manual look (unknown distributions render in red).
func RenderRequirements(w io.Writer, bundle *pyslice.Bundle) {
	if bundle == nil {
		return
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Requirements")
	fmt.Fprintln(w, "────────────────────────────────────────")

	req := bundle.Requirements
	if len(req.OnPyPI) == 0 && len(req.Stdlib) == 0 && len(req.Unknown) == 0 {
		fmt.Fprintln(w, "  (no third-party imports)")
	}

	for _, name := range req.OnPyPI {
		green.Fprintf(w, "  [pypi]    %s\n", name)
	}
	for _, name := range req.Stdlib {
		fmt.Fprintf(w, "  [stdlib]  %s\n", name)
	}
	for _, name := range req.Unknown {
		red.Fprintf(w, "  [unknown] %s\n", name)
	}
}
