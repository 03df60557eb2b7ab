// Package acquire gets Python source text for an entry, from a file on
// disk or from a recorded interactive session, mirroring the three
// acquisition paths of a REPL-first slicing tool: a plain module file, a
// notebook-style session history, and (by falling through to neither) an
// object with no retrievable source.
package acquire

import (
	"fmt"
	"os"
)

// ErrNoSource is returned when no acquisition path can produce source text
// for a path, matching the "object has no source" case of the original
// tool (a builtin, a C extension, or an interactively defined object with
// no backing file or session).
var ErrNoSource = fmt.Errorf("no source available")

// FromFile reads a module's full source text from disk.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
