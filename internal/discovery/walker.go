// Package discovery walks a project tree to find Python source files and
// the manifests (pyproject.toml) that pin its dependencies, without being
// told every file explicitly.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs lists directory names that are never walked into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"env":          true,
	".mypy_cache":  true,
	".pytest_cache": true,
}

// File is one discovered Python source file.
type File struct {
	Path    string
	RelPath string
	Class   FileClass
}

// FileClass distinguishes ordinary source from test files.
type FileClass int

const (
	ClassSource FileClass = iota
	ClassTest
)

// Result is the outcome of a Discover call.
type Result struct {
	RootDir      string
	Files        []File
	SkippedCount int
	SymlinkCount int
}

// Walker discovers Python source files in a directory tree.
type Walker struct{}

// NewWalker returns a ready-to-use Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Discover walks rootDir recursively for .py files, honoring .gitignore
// and skipping the directories in skipDirs.
func (w *Walker) Discover(rootDir string) (*Result, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	result := &Result{RootDir: rootDir}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			result.SkippedCount++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			result.SymlinkCount++
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") && name != "." {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		if filepath.Ext(name) != ".py" {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			result.SkippedCount++
			return nil
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			return nil
		}

		result.Files = append(result.Files, File{
			Path:    path,
			RelPath: relPath,
			Class:   classifyPythonFile(name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return result, nil
}

// FindManifests returns the directory of every pyproject.toml found from
// rootDir down, in the walk's lexical order; each is a directory that
// distmap.FromPyproject accepts.
func (w *Walker) FindManifests(rootDir string) []string {
	var manifests []string
	filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			if d != nil && d.IsDir() && skipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == "pyproject.toml" {
			manifests = append(manifests, filepath.Dir(path))
		}
		return nil
	})
	return manifests
}
