package output

import (
	"strings"
	"testing"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

func TestGenerateBadge(t *testing.T) {
	tests := []struct {
		name      string
		bundle    *pyslice.Bundle
		wantColor string
		wantMsg   string
	}{
		{
			name: "all resolved",
			bundle: &pyslice.Bundle{
				Requirements: pyslice.Requirements{
					OnPyPI: []string{"requests"},
					Stdlib: []string{"os"},
				},
			},
			wantColor: "green",
			wantMsg:   "1 pypi / 1 stdlib / 0 unknown",
		},
		{
			name: "some unknown",
			bundle: &pyslice.Bundle{
				Requirements: pyslice.Requirements{
					OnPyPI:  []string{"requests"},
					Unknown: []string{"mystery"},
				},
			},
			wantColor: "yellow",
			wantMsg:   "1 pypi / 0 stdlib / 1 unknown",
		},
		{
			name: "only unknown",
			bundle: &pyslice.Bundle{
				Requirements: pyslice.Requirements{
					Unknown: []string{"mystery"},
				},
			},
			wantColor: "red",
			wantMsg:   "0 pypi / 0 stdlib / 1 unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badge := GenerateBadge(tt.bundle)
			if !strings.Contains(badge.URL, tt.wantColor) {
				t.Errorf("URL %q missing color %q", badge.URL, tt.wantColor)
			}
			if !strings.Contains(badge.Markdown, pysliceRepoURL) {
				t.Errorf("Markdown %q missing repo link", badge.Markdown)
			}
			wantEncoded := encodeBadgeText(tt.wantMsg)
			if !strings.Contains(badge.URL, wantEncoded) {
				t.Errorf("URL %q missing encoded message %q", badge.URL, wantEncoded)
			}
		})
	}
}

func TestGenerateBadgeNilBundle(t *testing.T) {
	badge := GenerateBadge(nil)
	if badge.URL != "" || badge.Markdown != "" {
		t.Errorf("expected empty badge for nil bundle, got %+v", badge)
	}
}

func TestEncodeBadgeTextEscapesDashes(t *testing.T) {
	got := encodeBadgeText("a-b c")
	if !strings.Contains(got, "--") {
		t.Errorf("encodeBadgeText(%q) = %q, want escaped dashes", "a-b c", got)
	}
}

func TestRenderBadge(t *testing.T) {
	var buf strings.Builder
	bundle := &pyslice.Bundle{Requirements: pyslice.Requirements{OnPyPI: []string{"requests"}}}
	RenderBadge(&buf, bundle)

	out := buf.String()
	if !strings.Contains(out, "pyslice") {
		t.Errorf("RenderBadge output missing badge markdown: %q", out)
	}
}

func TestRenderBadgeNilBundle(t *testing.T) {
	var buf strings.Builder
	RenderBadge(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil bundle, got %q", buf.String())
	}
}
