package parser

import (
	"testing"

	"github.com/dvm-shlee/pyslice/internal/tsutil"
)

func TestNewTreeSitterParser(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()
}

func TestParseModule(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()

	content := []byte("import os\n\ndef foo():\n    return os.getcwd()\n")
	pf, err := p.ParseModule("app.py", content)
	if err != nil {
		t.Fatalf("ParseModule() error: %v", err)
	}
	defer pf.Tree.Close()

	root := pf.Tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}
	if root.Kind() != "module" {
		t.Errorf("root node kind = %q, want %q", root.Kind(), "module")
	}
	if root.ChildCount() == 0 {
		t.Error("root node has no children")
	}
}

func TestParseModuleHasParseError(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()

	pf, err := p.ParseModule("broken.py", []byte("def foo(:\n    pass\n"))
	if err != nil {
		t.Fatalf("ParseModule() error: %v", err)
	}
	defer pf.Tree.Close()

	if !tsutil.HasParseError(pf.Tree.RootNode()) {
		t.Error("expected HasParseError to report true for malformed source")
	}
}

func TestParserReuse(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()

	content1 := []byte("def foo():\n    return 42\n")
	pf1, err := p.ParseModule("a.py", content1)
	if err != nil {
		t.Fatalf("ParseModule #1 error: %v", err)
	}
	defer pf1.Tree.Close()

	content2 := []byte("class Bar:\n    pass\n")
	pf2, err := p.ParseModule("b.py", content2)
	if err != nil {
		t.Fatalf("ParseModule #2 error: %v", err)
	}
	defer pf2.Tree.Close()

	if pf1.Tree.RootNode() == nil || pf2.Tree.RootNode() == nil {
		t.Error("one or both trees have nil root nodes")
	}
}

func TestCloseDoesNotPanic(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	p.Close()

	CloseAll(nil)
	CloseAll([]*ParsedFile{})
}

func TestEffectiveRootUnwrapsSingleFunction(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()

	pf, err := p.ParseModule("single.py", []byte("def only():\n    return 1\n"))
	if err != nil {
		t.Fatalf("ParseModule() error: %v", err)
	}
	defer pf.Tree.Close()

	root := EffectiveRoot(pf.Tree.RootNode())
	if root.Kind() != "function_definition" {
		t.Errorf("EffectiveRoot kind = %q, want function_definition", root.Kind())
	}
}

func TestEffectiveRootKeepsModuleWithMultipleStatements(t *testing.T) {
	p, err := NewTreeSitterParser()
	if err != nil {
		t.Fatalf("NewTreeSitterParser() error: %v", err)
	}
	defer p.Close()

	pf, err := p.ParseModule("multi.py", []byte("import os\n\ndef only():\n    return os\n"))
	if err != nil {
		t.Fatalf("ParseModule() error: %v", err)
	}
	defer pf.Tree.Close()

	root := EffectiveRoot(pf.Tree.RootNode())
	if root.Kind() != "module" {
		t.Errorf("EffectiveRoot kind = %q, want module", root.Kind())
	}
}
