// Package pipeline orchestrates a single isolate run: resolve options,
// call pyslice.Isolate, and render the resulting Bundle.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dvm-shlee/pyslice/internal/output"
	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

// ProgressFunc is a callback for pipeline stage progress updates.
type ProgressFunc func(stage string, detail string)

// Pipeline drives one isolate invocation end to end.
type Pipeline struct {
	writer      io.Writer
	jsonOutput  bool
	badgeOutput bool
	onProgress  ProgressFunc
}

// New creates a Pipeline. If onProgress is nil, a no-op is used.
func New(w io.Writer, jsonOutput bool, onProgress ProgressFunc) *Pipeline {
	if onProgress == nil {
		onProgress = func(string, string) {}
	}
	return &Pipeline{writer: w, jsonOutput: jsonOutput, onProgress: onProgress}
}

// SetBadgeOutput enables a shields.io-style import-health badge line in
// terminal output.
func (p *Pipeline) SetBadgeOutput(enabled bool) {
	p.badgeOutput = enabled
}

// Run isolates entries and renders the resulting Bundle to the
// Pipeline's writer.
func (p *Pipeline) Run(ctx context.Context, entries []pyslice.Entry, opts pyslice.Options) error {
	p.onProgress("isolate", "Indexing and closing over entries...")

	var warnings outputBuffer
	opts.Warnings = &warnings
	bundle, err := pyslice.Isolate(ctx, entries, opts)
	if err != nil {
		return fmt.Errorf("isolate: %w", err)
	}

	p.onProgress("render", "Rendering output...")

	if warnings.Len() > 0 {
		fmt.Fprint(os.Stderr, warnings.String())
	}

	if p.jsonOutput {
		if err := output.RenderJSON(p.writer, bundle); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	} else {
		output.RenderSource(p.writer, bundle)
		output.RenderRequirements(p.writer, bundle)
		if p.badgeOutput {
			output.RenderBadge(p.writer, bundle)
		}
	}

	return nil
}

// outputBuffer is a tiny io.Writer sink so Run can inspect whether any
// warnings were emitted before deciding to print them.
type outputBuffer struct {
	data []byte
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *outputBuffer) Len() int { return len(b.data) }

func (b *outputBuffer) String() string { return string(b.data) }
