// Package index builds a ModuleIndex from a single parsed Python module: the
// catalog of top-level imports, definitions, and variable assignments that
// later pipeline stages close over.
package index

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dvm-shlee/pyslice/internal/tsutil"
	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// dynamicImportCallees are the call targets treated as dynamic-import
// machinery when they appear as the value of a single-name assignment,
// e.g. `plugin = importlib.import_module("pkg.plugin")`.
var dynamicImportCallees = []string{"import_module", "__import__"}

// collectImports walks the direct statement children of a module node,
// recording one ImportItem per import/import-from/dynamic-import statement,
// keyed by the local alias it binds.
func collectImports(root *tree_sitter.Node, content []byte) map[string]*pytypes.ImportItem {
	out := make(map[string]*pytypes.ImportItem)
	if root == nil || root.Kind() != "module" {
		return out
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt == nil {
			continue
		}
		switch stmt.Kind() {
		case "import_statement":
			collectPlainImport(stmt, content, out)
		case "import_from_statement":
			collectFromImport(stmt, content, out)
		case "expression_statement":
			collectDynamicImport(stmt, content, out)
		}
	}
	return out
}

func collectPlainImport(stmt *tree_sitter.Node, content []byte, out map[string]*pytypes.ImportItem) {
	code := tsutil.NodeText(stmt, content)
	for i := uint(0); i < stmt.ChildCount(); i++ {
		child := stmt.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			dotted := tsutil.NodeText(child, content)
			top, rest := splitDotted(dotted)
			out[top] = &pytypes.ImportItem{
				Names:        map[string]string{top: dotted},
				Module:       top,
				Submodule:    rest,
				ImportedName: dotted,
				Code:         code,
			}
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			dotted := tsutil.NodeText(name, content)
			top, rest := splitDotted(dotted)
			aliasName := tsutil.NodeText(alias, content)
			out[aliasName] = &pytypes.ImportItem{
				Names:        map[string]string{aliasName: dotted},
				Module:       top,
				Submodule:    rest,
				ImportedName: dotted,
				Code:         code,
			}
		}
	}
}

func collectFromImport(stmt *tree_sitter.Node, content []byte, out map[string]*pytypes.ImportItem) {
	code := tsutil.NodeText(stmt, content)
	moduleNode := stmt.ChildByFieldName("module_name")
	level := 0
	module := ""
	if moduleNode != nil {
		switch moduleNode.Kind() {
		case "relative_import":
			module = tsutil.NodeText(moduleNode, content)
			level = strings.Count(module, ".")
			module = strings.TrimLeft(module, ".")
		default:
			module = tsutil.NodeText(moduleNode, content)
		}
	}
	top, _ := splitDotted(module)

	type nameAlias struct {
		alias    string
		imported string
	}

	star := false
	var pairs []nameAlias
	for i := uint(0); i < stmt.ChildCount(); i++ {
		child := stmt.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			star = true
		case "dotted_name":
			if moduleNode != nil && child.Id() == moduleNode.Id() {
				continue
			}
			imported := tsutil.NodeText(child, content)
			pairs = append(pairs, nameAlias{alias: imported, imported: imported})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			imported := tsutil.NodeText(name, content)
			aliasName := tsutil.NodeText(alias, content)
			pairs = append(pairs, nameAlias{alias: aliasName, imported: imported})
		}
	}

	if star {
		alias := "*_" + module
		out[alias] = &pytypes.ImportItem{
			Names:      map[string]string{alias: module},
			Module:     top,
			FromModule: module,
			Level:      level,
			Code:       code,
			UseStar:    true,
		}
		return
	}

	for _, p := range pairs {
		out[p.alias] = &pytypes.ImportItem{
			Names:        map[string]string{p.alias: module + "." + p.imported},
			Module:       top,
			FromModule:   module,
			ImportedName: p.imported,
			Level:        level,
			Code:         code,
		}
	}
}

// collectDynamicImport recognizes `name = importlib.import_module("pkg")`
// and `name = __import__("pkg")` top-level assignment statements.
func collectDynamicImport(stmt *tree_sitter.Node, content []byte, out map[string]*pytypes.ImportItem) {
	if stmt.ChildCount() == 0 {
		return
	}
	assign := stmt.Child(0)
	if assign == nil || assign.Kind() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Kind() != "identifier" || right.Kind() != "call" {
		return
	}

	callee := right.ChildByFieldName("function")
	if callee == nil || !isDynamicImportCallee(tsutil.NodeText(callee, content)) {
		return
	}

	args := right.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	pkg := ""
	override := ""
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Kind() {
		case "string":
			if pkg == "" {
				pkg = stringLiteralValue(arg, content)
			}
		case "keyword_argument":
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name != nil && value != nil && tsutil.NodeText(name, content) == "package" {
				override = stringLiteralValue(value, content)
			}
		}
	}
	if pkg == "" {
		return
	}
	if override != "" {
		pkg = override
	}

	alias := tsutil.NodeText(left, content)
	top, rest := splitDotted(pkg)
	out[alias] = &pytypes.ImportItem{
		Names:        map[string]string{alias: pkg},
		Module:       top,
		Submodule:    rest,
		ImportedName: pkg,
		Code:         tsutil.NodeText(stmt, content),
		IsDynamic:    true,
	}
}

func isDynamicImportCallee(text string) bool {
	for _, c := range dynamicImportCallees {
		if text == c || strings.HasSuffix(text, "."+c) {
			return true
		}
	}
	return false
}

func stringLiteralValue(node *tree_sitter.Node, content []byte) string {
	text := tsutil.NodeText(node, content)
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	return text
}

func splitDotted(dotted string) (top, rest string) {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i], dotted[i+1:]
	}
	return dotted, ""
}
