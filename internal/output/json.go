package output

import (
	"encoding/json"
	"io"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

// JSONReport is the top-level JSON output structure for a single isolate run.
type JSONReport struct {
	Version      string           `json:"version"`
	Source       string           `json:"source"`
	Requirements JSONRequirements `json:"requirements"`
	Unbound      []string         `json:"unbound,omitempty"`
	Badge        *JSONBadge       `json:"badge,omitempty"`
}

// JSONRequirements buckets the distribution names pulled in by the slice.
type JSONRequirements struct {
	OnPyPI  []string `json:"on_pypi,omitempty"`
	Stdlib  []string `json:"stdlib,omitempty"`
	Unknown []string `json:"unknown,omitempty"`
}

// JSONBadge carries the shields.io badge URL and markdown, included only
// when BuildJSONReport is called with includeBadge set. RenderJSON never
// sets it.
type JSONBadge struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// BuildJSONReport converts a Bundle into a JSONReport. When includeBadge is
// true, badge URL and markdown are included.
func BuildJSONReport(bundle *pyslice.Bundle, includeBadge bool) *JSONReport {
	report := &JSONReport{
		Version: "1",
		Source:  bundle.Source,
		Requirements: JSONRequirements{
			OnPyPI:  bundle.Requirements.OnPyPI,
			Stdlib:  bundle.Requirements.Stdlib,
			Unknown: bundle.Requirements.Unknown,
		},
		Unbound: bundle.Unbound,
	}

	if includeBadge {
		badge := GenerateBadge(bundle)
		report.Badge = &JSONBadge{URL: badge.URL, Markdown: badge.Markdown}
	}

	return report
}

// RenderJSON writes bundle as a pretty-printed JSON report to w.
func RenderJSON(w io.Writer, bundle *pyslice.Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSONReport(bundle, false))
}
