// Package tsutil provides small Tree-sitter traversal helpers shared by
// pyslice's source acquisition and indexing stages.
package tsutil

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Walk walks a Tree-sitter tree depth-first, calling fn for each node
// including the root. Walking stops descending into a subtree when fn
// returns false for that node's children by way of WalkPruned; plain Walk
// always visits every descendant.
func Walk(node *tree_sitter.Node, fn func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// WalkPruned walks depth-first like Walk, but fn returning false prevents
// descent into that node's children. HasParseError uses it to stop
// descending once an ERROR node is found.
func WalkPruned(node *tree_sitter.Node, fn func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			WalkPruned(child, fn)
		}
	}
}

// NodeText extracts the text content of a Tree-sitter node from the
// original source buffer.
func NodeText(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

// HasParseError reports whether node's subtree contains a Tree-sitter ERROR
// node, the tolerant parser's signal for malformed input.
func HasParseError(node *tree_sitter.Node) bool {
	if node == nil {
		return false
	}
	found := false
	WalkPruned(node, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		if n.Kind() == "ERROR" {
			found = true
			return false
		}
		return true
	})
	return found
}

// Children returns the direct named-shape children of node as a slice,
// skipping nil entries (Tree-sitter leaves gaps for optional grammar slots).
func Children(node *tree_sitter.Node) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
