// Package parser wraps the Tree-sitter Python grammar behind a small,
// pooled API. Tree-sitter parsers require CGO_ENABLED=1. Every Tree and
// Parser must be explicitly closed to avoid leaking the underlying C
// allocations.
package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ParsedFile holds a parsed Tree-sitter syntax tree alongside the source
// bytes it was built from. Callers must call Tree.Close() when done, or use
// CloseAll.
type ParsedFile struct {
	Path    string
	Tree    *tree_sitter.Tree
	Content []byte
}

// TreeSitterParser holds a pooled Python Tree-sitter parser. Tree-sitter
// parsers are NOT thread-safe, so all parse operations are serialized via a
// mutex; trees returned from parsing are safe to use concurrently afterward.
type TreeSitterParser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewTreeSitterParser creates a parser bound to the Python grammar.
func NewTreeSitterParser() (*TreeSitterParser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &TreeSitterParser{parser: p}, nil
}

// Close releases the underlying parser. Must be called when done.
func (p *TreeSitterParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseModule parses a Python module's source text. The returned Tree must
// be closed by the caller.
func (p *TreeSitterParser) ParseModule(path string, content []byte) (*ParsedFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: tree-sitter returned nil", path)
	}

	return &ParsedFile{Path: path, Tree: tree, Content: content}, nil
}

// EffectiveRoot implements the single-definition-unwrap rule: when a
// module's top level consists of exactly one statement and that statement
// is a function or class definition, indexing treats the definition itself
// as the root rather than the enclosing module. This lets a source acquirer
// that already isolated one object (e.g. the body text of a single function
// pulled from a REPL) be indexed the same way as a full file defining it
// alongside other top-level code.
func EffectiveRoot(root *tree_sitter.Node) *tree_sitter.Node {
	if root == nil || root.Kind() != "module" {
		return root
	}

	var only *tree_sitter.Node
	count := 0
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "comment":
			continue
		}
		count++
		if count > 1 {
			return root
		}
		only = child
	}

	if only == nil {
		return root
	}
	switch only.Kind() {
	case "function_definition", "class_definition":
		return only
	case "decorated_definition":
		return only
	default:
		return root
	}
}

// CloseAll closes every tree in a slice of ParsedFile. Safe to call with a
// nil or empty slice.
func CloseAll(files []*ParsedFile) {
	for _, f := range files {
		if f != nil && f.Tree != nil {
			f.Tree.Close()
		}
	}
}
