package index

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dvm-shlee/pyslice/internal/tsutil"
	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// Build indexes a single parsed Python module, producing the catalog of
// top-level imports, definitions, and variables that reachability closure
// later walks. root is normally the module's Tree-sitter root node (a
// "module" node); callers that applied parser.EffectiveRoot's single-
// definition unwrap instead pass the lone function/class definition
// directly, in which case only that definition is indexed and the module
// has no top-level imports or variables. content is the exact source bytes
// the tree was parsed from.
func Build(modulePath string, root *tree_sitter.Node, content []byte, opts Options) *pytypes.ModuleIndex {
	idx := pytypes.NewModuleIndex(modulePath, string(content))
	idx.Imports = collectImports(root, content)
	idx.Defs = collectDefs(root, content, opts)
	idx.Vars = collectVars(root, content, idx.Defs)

	for _, def := range idx.Defs {
		node := root
		if root != nil && root.Kind() == "module" {
			node = findDefNode(root, def.Name, content)
		}
		free, annotationOnly := collectFreeNames(node, content)
		def.FreeNames = free
		def.TypeOnly = annotationOnly
	}
	for _, v := range idx.Vars {
		valueNode := findVarValueNode(root, v.Name, content)
		free, _ := collectFreeNamesInExpr(valueNode, content)
		v.FreeNames = free
	}
	return idx
}

// collectVars records top-level `NAME = expr` assignments that aren't
// already captured as dynamic imports.
func collectVars(root *tree_sitter.Node, content []byte, defs map[string]*pytypes.DefItem) map[string]*pytypes.VarsItem {
	out := make(map[string]*pytypes.VarsItem)
	if root == nil || root.Kind() != "module" {
		return out
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt == nil || stmt.Kind() != "expression_statement" {
			continue
		}
		if stmt.ChildCount() == 0 {
			continue
		}
		assign := stmt.Child(0)
		if assign == nil || assign.Kind() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Kind() != "identifier" {
			continue
		}
		name := tsutil.NodeText(left, content)
		if _, isDef := defs[name]; isDef {
			continue
		}
		if isDynamicImportAssignment(assign, content) {
			continue
		}
		out[name] = &pytypes.VarsItem{
			Name: name,
			Code: tsutil.NodeText(stmt, content),
		}
	}
	return out
}

func isDynamicImportAssignment(assign *tree_sitter.Node, content []byte) bool {
	right := assign.ChildByFieldName("right")
	if right == nil || right.Kind() != "call" {
		return false
	}
	callee := right.ChildByFieldName("function")
	return callee != nil && isDynamicImportCallee(tsutil.NodeText(callee, content))
}

// findDefNode re-locates a top-level def's node by name, matching defs.go's
// decorated_definition unwrapping. Kept separate from buildDefItem so the
// FreeNames pass can run after every def/var is cataloged.
func findDefNode(root *tree_sitter.Node, name string, content []byte) *tree_sitter.Node {
	if root == nil {
		return nil
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt == nil {
			continue
		}
		node := stmt
		if node.Kind() == "decorated_definition" {
			for j := uint(0); j < node.ChildCount(); j++ {
				c := node.Child(j)
				if c != nil && (c.Kind() == "function_definition" || c.Kind() == "class_definition") {
					node = c
				}
			}
		}
		if node.Kind() != "function_definition" && node.Kind() != "class_definition" {
			continue
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil && tsutil.NodeText(nameNode, content) == name {
			return stmt
		}
	}
	return nil
}

func findVarValueNode(root *tree_sitter.Node, name string, content []byte) *tree_sitter.Node {
	if root == nil {
		return nil
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt == nil || stmt.Kind() != "expression_statement" || stmt.ChildCount() == 0 {
			continue
		}
		assign := stmt.Child(0)
		if assign == nil || assign.Kind() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left != nil && left.Kind() == "identifier" && tsutil.NodeText(left, content) == name {
			return assign.ChildByFieldName("right")
		}
	}
	return nil
}

func collectFreeNamesInExpr(expr *tree_sitter.Node, content []byte) (map[string]bool, map[string]bool) {
	if expr == nil {
		return map[string]bool{}, map[string]bool{}
	}
	return collectFreeNames(expr, content)
}
