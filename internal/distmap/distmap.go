// Package distmap builds a top-level-module-name to distribution-name map,
// the local source of truth the classifier consults before ever asking
// PyPI. It reads both an installed interpreter's pip listing and static
// pyproject.toml manifests; callers combine the results with Merge.
package distmap

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const pipListTimeout = 5 * time.Second

// lookPathFunc and runPipList are package-level variables for test
// injection, mirroring how CLI-detection code elsewhere in this repo stubs
// exec.LookPath and command execution.
var (
	lookPathFunc = exec.LookPath
	runPipList   = func(ctx context.Context, python string) ([]byte, error) {
		return exec.CommandContext(ctx, python, "-m", "pip", "list", "--format=json").Output()
	}
)

type pipPackage struct {
	Name string `json:"name"`
}

// FromInterpreter shells out to a `python`/`python3` binary's pip to list
// installed distributions, then maps each distribution's importable
// top-level name back to itself. Real top-level/distribution splits (a
// distribution providing a differently-named package) aren't resolvable
// this way without reading each distribution's metadata; those are left to
// an explicit PackageOverrides config entry.
func FromInterpreter(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, pipListTimeout)
	defer cancel()

	python := ""
	for _, candidate := range []string{"python3", "python"} {
		if path, err := lookPathFunc(candidate); err == nil {
			python = path
			break
		}
	}
	if python == "" {
		return nil
	}

	out, err := runPipList(ctx, python)
	if err != nil {
		return nil
	}

	var pkgs []pipPackage
	if err := json.Unmarshal(out, &pkgs); err != nil {
		return nil
	}

	dist := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		name := normalizeDistName(p.Name)
		if name == "" {
			continue
		}
		dist[name] = p.Name
	}
	return dist
}

// pyprojectManifest models just the dependency lists this package needs out
// of a pyproject.toml, ignoring everything else.
type pyprojectManifest struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// FromPyproject parses dir/pyproject.toml's [project.dependencies] list.
// It does not depend on whether a Python interpreter is reachable.
func FromPyproject(dir string) map[string]string {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return nil
	}

	var manifest pyprojectManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil
	}

	dist := make(map[string]string)
	for _, dep := range manifest.Project.Dependencies {
		pkg := parseRequirementName(dep)
		if pkg == "" {
			continue
		}
		dist[normalizeDistName(pkg)] = pkg
	}
	return dist
}

// parseRequirementName strips version specifiers and extras off a PEP 508
// requirement string, e.g. "requests[socks]>=2.31" -> "requests".
func parseRequirementName(req string) string {
	req = strings.TrimSpace(req)
	for _, cut := range []string{"[", "==", ">=", "<=", "~=", "!=", ">", "<", ";", " "} {
		if i := strings.Index(req, cut); i >= 0 {
			req = req[:i]
		}
	}
	return req
}

// normalizeDistName converts a PyPI distribution name into the form it's
// typically imported under: lowercased, hyphens to underscores.
func normalizeDistName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
}

// knownOverrides maps import names to their PyPI distribution name for the
// well-known cases where the two diverge and neither pip-list nor
// pyproject.toml parsing can recover the link: pip list only reports
// distribution names, and pyproject.toml dependency entries are already
// distribution names, so in both cases the import name itself is never
// observed directly.
var knownOverrides = map[string]string{
	"PIL":     "Pillow",
	"yaml":    "PyYAML",
	"bs4":     "beautifulsoup4",
	"sklearn": "scikit-learn",
	"cv2":     "opencv-python",
	"dotenv":  "python-dotenv",
}

// KnownOverrides returns the built-in import-name to distribution-name
// table for well-known mismatches, meant to be merged in at the lowest
// priority so a project's own pip-list or pyproject.toml entry always wins.
func KnownOverrides() map[string]string {
	out := make(map[string]string, len(knownOverrides))
	for k, v := range knownOverrides {
		out[k] = v
	}
	return out
}

// Merge combines distribution maps with later maps taking precedence,
// modeling last-write-wins when more than one source names the same
// top-level module.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
