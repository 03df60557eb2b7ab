package index

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dvm-shlee/pyslice/internal/tsutil"
)

// collectFreeNames walks a definition's full subtree (including nested
// scopes, since a name used only inside a nested function still needs to
// resolve against the enclosing module when that nested function is
// collapsed away) and returns every identifier used in a load context that
// isn't bound somewhere within the subtree and isn't a builtin.
//
// annotationOnly receives names that were referenced exclusively in
// annotation position (parameter/return/variable type hints), which the
// renderer routes into a TYPE_CHECKING-guarded import block.
func collectFreeNames(def *tree_sitter.Node, content []byte) (free map[string]bool, annotationOnly map[string]bool) {
	bound := make(map[string]bool)
	collectBoundNames(def, content, bound)

	used := make(map[string]bool)
	annotated := make(map[string]bool)
	nonAnnotated := make(map[string]bool)

	tsutil.Walk(def, func(node *tree_sitter.Node) {
		if node.Kind() != "identifier" {
			return
		}
		parent := node.Parent()
		if parent == nil {
			return
		}
		if isBindingOccurrence(node, parent) {
			return
		}
		if isSkippedReference(node, parent) {
			return
		}
		name := tsutil.NodeText(node, content)
		if name == "" || pythonBuiltins[name] {
			return
		}
		used[name] = true
		if isAnnotationPosition(node, parent) {
			annotated[name] = true
		} else {
			nonAnnotated[name] = true
		}
	})

	free = make(map[string]bool)
	annotationOnly = make(map[string]bool)
	for name := range used {
		if bound[name] {
			continue
		}
		free[name] = true
		if annotated[name] && !nonAnnotated[name] {
			annotationOnly[name] = true
		}
	}
	return free, annotationOnly
}

func collectBoundNames(def *tree_sitter.Node, content []byte, bound map[string]bool) {
	tsutil.Walk(def, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "parameters", "lambda_parameters":
			for i := uint(0); i < node.ChildCount(); i++ {
				bindParameter(node.Child(i), content, bound)
			}
		case "assignment", "augmented_assignment":
			left := node.ChildByFieldName("left")
			bindTarget(left, content, bound)
		case "named_expression":
			name := node.ChildByFieldName("name")
			bindTarget(name, content, bound)
		case "for_statement":
			left := node.ChildByFieldName("left")
			bindTarget(left, content, bound)
		case "for_in_clause":
			left := node.ChildByFieldName("left")
			bindTarget(left, content, bound)
		case "except_clause":
			alias := node.ChildByFieldName("alias")
			bindTarget(alias, content, bound)
		case "with_item":
			alias := node.ChildByFieldName("alias")
			bindTarget(alias, content, bound)
		case "global_statement", "nonlocal_statement":
			for i := uint(0); i < node.ChildCount(); i++ {
				c := node.Child(i)
				if c != nil && c.Kind() == "identifier" {
					bound[tsutil.NodeText(c, content)] = true
				}
			}
		case "function_definition", "class_definition":
			if n := node.ChildByFieldName("name"); n != nil {
				bound[tsutil.NodeText(n, content)] = true
			}
		}
	})
}

func bindParameter(param *tree_sitter.Node, content []byte, bound map[string]bool) {
	if param == nil {
		return
	}
	switch param.Kind() {
	case "identifier":
		bound[tsutil.NodeText(param, content)] = true
	case "typed_parameter", "default_parameter", "typed_default_parameter",
		"list_splat_pattern", "dictionary_splat_pattern":
		if n := param.ChildByFieldName("name"); n != nil {
			bound[tsutil.NodeText(n, content)] = true
			return
		}
		for i := uint(0); i < param.ChildCount(); i++ {
			c := param.Child(i)
			if c != nil && c.Kind() == "identifier" {
				bound[tsutil.NodeText(c, content)] = true
				return
			}
		}
	}
}

func bindTarget(target *tree_sitter.Node, content []byte, bound map[string]bool) {
	if target == nil {
		return
	}
	switch target.Kind() {
	case "identifier":
		bound[tsutil.NodeText(target, content)] = true
	case "tuple_pattern", "list_pattern", "pattern_list":
		for i := uint(0); i < target.ChildCount(); i++ {
			bindTarget(target.Child(i), content, bound)
		}
	}
}

func isBindingOccurrence(node, parent *tree_sitter.Node) bool {
	switch parent.Kind() {
	case "function_definition", "class_definition":
		if n := parent.ChildByFieldName("name"); n != nil && n.Id() == node.Id() {
			return true
		}
	case "identifier":
		return false
	case "typed_parameter", "default_parameter", "typed_default_parameter",
		"list_splat_pattern", "dictionary_splat_pattern":
		if n := parent.ChildByFieldName("name"); n != nil && n.Id() == node.Id() {
			return true
		}
	case "parameters", "lambda_parameters":
		return true
	case "keyword_argument":
		if n := parent.ChildByFieldName("name"); n != nil && n.Id() == node.Id() {
			return true
		}
	case "assignment", "augmented_assignment":
		if left := parent.ChildByFieldName("left"); left != nil && left.Id() == node.Id() {
			return true
		}
	}
	return false
}

// isSkippedReference filters out identifier occurrences that are not name
// lookups at all: the attribute half of `a.b`, and import-alias bookkeeping
// (handled separately by the import collector).
func isSkippedReference(node, parent *tree_sitter.Node) bool {
	if parent.Kind() == "attribute" {
		if attr := parent.ChildByFieldName("attribute"); attr != nil && attr.Id() == node.Id() {
			return true
		}
	}
	for n := parent; n != nil; n = n.Parent() {
		switch n.Kind() {
		case "import_statement", "import_from_statement", "future_import_statement":
			return true
		case "block", "module":
			return false
		}
	}
	return false
}

func isAnnotationPosition(node, parent *tree_sitter.Node) bool {
	for n := parent; n != nil; n = n.Parent() {
		switch n.Kind() {
		case "type":
			return true
		case "block", "function_definition", "class_definition":
			return false
		}
	}
	return false
}

// pythonBuiltins lists the CPython builtin namespace names, plus the
// conventional self/cls receiver names, that pyslice treats as always
// resolved, so they never show up as free names or unbound warnings.
var pythonBuiltins = map[string]bool{
	"abs": true, "aiter": true, "anext": true, "all": true, "any": true,
	"ascii": true, "bin": true, "bool": true, "breakpoint": true,
	"bytearray": true, "bytes": true, "callable": true, "chr": true,
	"classmethod": true, "compile": true, "complex": true, "delattr": true,
	"dict": true, "dir": true, "divmod": true, "enumerate": true, "eval": true,
	"exec": true, "filter": true, "float": true, "format": true,
	"frozenset": true, "getattr": true, "globals": true, "hasattr": true,
	"hash": true, "help": true, "hex": true, "id": true, "input": true,
	"int": true, "isinstance": true, "issubclass": true, "iter": true,
	"len": true, "list": true, "locals": true, "map": true, "max": true,
	"memoryview": true, "min": true, "next": true, "object": true, "oct": true,
	"open": true, "ord": true, "pow": true, "print": true, "property": true,
	"range": true, "repr": true, "reversed": true, "round": true, "set": true,
	"setattr": true, "slice": true, "sorted": true, "staticmethod": true,
	"str": true, "sum": true, "super": true, "tuple": true, "type": true,
	"vars": true, "zip": true, "__import__": true,
	"True": true, "False": true, "None": true, "NotImplemented": true,
	"Ellipsis": true, "__name__": true, "__file__": true, "__doc__": true,
	"self": true, "cls": true,
	"Exception": true, "BaseException": true, "ValueError": true,
	"TypeError": true, "KeyError": true, "IndexError": true,
	"AttributeError": true, "RuntimeError": true, "StopIteration": true,
	"StopAsyncIteration": true, "NotImplementedError": true, "OSError": true,
	"IOError": true, "ImportError": true, "ModuleNotFoundError": true,
	"NameError": true, "UnboundLocalError": true, "ZeroDivisionError": true,
	"ArithmeticError": true, "AssertionError": true, "LookupError": true,
	"GeneratorExit": true, "KeyboardInterrupt": true, "SystemExit": true,
}
