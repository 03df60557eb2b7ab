package output

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fatih/color"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

// pysliceRepoURL is the URL the badge markdown links back to.
const pysliceRepoURL = "https://github.com/dvm-shlee/pyslice"

// BadgeInfo contains the generated badge URL and markdown.
type BadgeInfo struct {
	URL      string // Raw shields.io badge URL
	Markdown string // Complete markdown with link to repo
}

// GenerateBadge creates a shields.io badge URL and markdown summarizing a
// Bundle's requirement classification: "N pypi / N stdlib / N unknown".
// Returns empty BadgeInfo if bundle is nil.
func GenerateBadge(bundle *pyslice.Bundle) BadgeInfo {
	if bundle == nil {
		return BadgeInfo{}
	}

	message := fmt.Sprintf("%d pypi / %d stdlib / %d unknown",
		len(bundle.Requirements.OnPyPI), len(bundle.Requirements.Stdlib), len(bundle.Requirements.Unknown))

	encodedMessage := encodeBadgeText(message)
	badgeColor := requirementsColor(bundle)

	badgeURL := fmt.Sprintf("https://img.shields.io/badge/pyslice-%s-%s", encodedMessage, badgeColor)
	markdown := fmt.Sprintf("[![pyslice](%s)](%s)", badgeURL, pysliceRepoURL)

	return BadgeInfo{URL: badgeURL, Markdown: markdown}
}

// encodeBadgeText encodes text for use in a shields.io badge URL.
// Dashes must be escaped as double-dashes before URL encoding.
func encodeBadgeText(s string) string {
	escaped := strings.ReplaceAll(s, "-", "--")
	return url.PathEscape(escaped)
}

// requirementsColor maps a Bundle's requirement mix to a shields.io color
// name: green when every import resolved cleanly, yellow when some are
// unknown, red when none resolved at all.
func requirementsColor(bundle *pyslice.Bundle) string {
	if len(bundle.Requirements.Unknown) == 0 {
		return "green"
	}
	if len(bundle.Requirements.OnPyPI) > 0 || len(bundle.Requirements.Stdlib) > 0 {
		return "yellow"
	}
	return "red"
}

// RenderBadge prints the shields.io badge markdown for bundle to w.
func RenderBadge(w io.Writer, bundle *pyslice.Bundle) {
	if bundle == nil {
		return
	}

	bold := color.New(color.Bold)
	badge := GenerateBadge(bundle)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Badge")
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintln(w, badge.Markdown)
}
