package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFindsSourceAndTestFiles(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(tmpDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("app.py", "def handler():\n    return 1\n")
	write("test_app.py", "def test_handler():\n    assert True\n")
	write(".venv/lib/site.py", "x = 1\n")
	write("README.md", "not python\n")

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	byPath := make(map[string]File)
	for _, f := range result.Files {
		byPath[f.RelPath] = f
	}

	if f, ok := byPath["app.py"]; !ok || f.Class != ClassSource {
		t.Errorf("app.py not classified as source: %+v", f)
	}
	if f, ok := byPath["test_app.py"]; !ok || f.Class != ClassTest {
		t.Errorf("test_app.py not classified as test: %+v", f)
	}
	if _, ok := byPath[filepath.Join(".venv", "lib", "site.py")]; ok {
		t.Error(".venv contents should have been skipped")
	}
	if _, ok := byPath["README.md"]; ok {
		t.Error("non-Python file should not be discovered")
	}
}

func TestDiscoverRespectsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("ignored.py\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "ignored.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "kept.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWalker()
	result, err := w.Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	for _, f := range result.Files {
		if f.RelPath == "ignored.py" {
			t.Error("ignored.py should have been excluded by .gitignore")
		}
	}
}

func TestDiscoverNonExistentDir(t *testing.T) {
	w := NewWalker()
	if _, err := w.Discover("/nonexistent/path/that/does/not/exist"); err == nil {
		t.Error("expected error for non-existent directory, got nil")
	}
}

func TestFindManifests(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "pyproject.toml"), []byte("[project]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWalker()
	manifests := w.FindManifests(tmpDir)
	if len(manifests) != 1 || manifests[0] != sub {
		t.Errorf("FindManifests() = %v, want [%s]", manifests, sub)
	}
}
