package index

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dvm-shlee/pyslice/internal/tsutil"
	"github.com/dvm-shlee/pyslice/pkg/pytypes"
)

// Options controls the two independent pruning behaviors collectDefs
// applies while building each DefItem.Pruned.
type Options struct {
	// CollapseInnerFunctions removes function/class definitions nested
	// inside a function body entirely, at any depth through control-flow
	// blocks (if/for/while/try/with).
	CollapseInnerFunctions bool
	// CollapseMethods replaces each method body inside a class with a
	// single `pass` statement, keeping the method's signature (and any
	// decorators) intact.
	CollapseMethods bool
}

// collectDefs walks the direct statement children of root, recording one
// DefItem per top-level function or class definition (decorators
// included). If root itself is a single unwrapped definition (see
// parser.EffectiveRoot), that definition alone is indexed. Nested
// definitions are pruned out of the rendered Pruned source according to
// opts; Source always keeps the original text.
func collectDefs(root *tree_sitter.Node, content []byte, opts Options) map[string]*pytypes.DefItem {
	out := make(map[string]*pytypes.DefItem)
	if root == nil {
		return out
	}
	if root.Kind() != "module" {
		if def := buildDefItem(root, content, opts); def != nil {
			out[def.Name] = def
		}
		return out
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt == nil {
			continue
		}
		def := buildDefItem(stmt, content, opts)
		if def != nil {
			out[def.Name] = def
		}
	}
	return out
}

func buildDefItem(stmt *tree_sitter.Node, content []byte, opts Options) *pytypes.DefItem {
	var decorators []string
	node := stmt
	if node.Kind() == "decorated_definition" {
		for i := uint(0); i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c == nil {
				continue
			}
			if c.Kind() == "decorator" {
				decorators = append(decorators, strings.TrimPrefix(tsutil.NodeText(c, content), "@"))
			}
			if c.Kind() == "function_definition" || c.Kind() == "class_definition" {
				node = c
			}
		}
	}

	switch node.Kind() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		kind := pytypes.KindFunction
		if hasAsyncKeyword(stmt, content) {
			kind = pytypes.KindAsyncFunction
		}
		return &pytypes.DefItem{
			Name:       tsutil.NodeText(nameNode, content),
			Kind:       kind,
			Source:     tsutil.NodeText(stmt, content),
			Pruned:     pruneNestedDefs(node, content, opts),
			Decorators: decorators,
		}
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		bases, keywords := classBasesAndKeywords(node, content)
		return &pytypes.DefItem{
			Name:       tsutil.NodeText(nameNode, content),
			Kind:       pytypes.KindClass,
			Source:     tsutil.NodeText(stmt, content),
			Pruned:     pruneNestedDefs(node, content, opts),
			Bases:      bases,
			Keywords:   keywords,
			Decorators: decorators,
		}
	default:
		return nil
	}
}

func hasAsyncKeyword(stmt *tree_sitter.Node, content []byte) bool {
	return strings.Contains(tsutil.NodeText(stmt, content), "async def")
}

func classBasesAndKeywords(node *tree_sitter.Node, content []byte) (bases, keywords []string) {
	argList := node.ChildByFieldName("superclasses")
	if argList == nil {
		return nil, nil
	}
	for i := uint(0); i < argList.ChildCount(); i++ {
		arg := argList.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Kind() {
		case "keyword_argument":
			keywords = append(keywords, tsutil.NodeText(arg, content))
		case "(", ")", ",":
			continue
		default:
			bases = append(bases, tsutil.NodeText(arg, content))
		}
	}
	return bases, keywords
}

// pruneNestedDefs renders def's source with nested function/class
// definitions inside its body spliced out, since Tree-sitter nodes are
// read-only views into the byte buffer and can't be mutated like an AST
// can. Classes and functions are pruned differently, mirroring the two
// independent toggles in Options: a class's direct method bodies collapse
// to `pass` under CollapseMethods while nested classes are removed
// entirely under CollapseInnerFunctions; a function's nested defs at any
// depth (including inside if/for/while/try/with blocks) are removed
// entirely under CollapseInnerFunctions.
func pruneNestedDefs(def *tree_sitter.Node, content []byte, opts Options) string {
	body := def.ChildByFieldName("body")
	if body == nil {
		return tsutil.NodeText(def, content)
	}

	if def.Kind() == "class_definition" {
		return pruneClassBody(def, body, content, opts)
	}
	return pruneFunctionBody(def, body, content, opts)
}

type replacement struct {
	start, end uint
	text       string // empty means remove the range entirely
}

func pruneClassBody(def, body *tree_sitter.Node, content []byte, opts Options) string {
	var repls []replacement
	kept := 0
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		if stmt == nil {
			continue
		}
		method := unwrapDecorated(stmt)
		switch {
		case method.Kind() == "function_definition":
			if opts.CollapseMethods {
				repls = append(repls, replacement{stmt.StartByte(), stmt.EndByte(), collapsedMethodText(stmt, method, content)})
			}
		case method.Kind() == "class_definition":
			if opts.CollapseInnerFunctions {
				repls = append(repls, replacement{stmt.StartByte(), stmt.EndByte(), ""})
				continue
			}
		}
		if stmt.Kind() != "comment" {
			kept++
		}
	}
	if kept == 0 && len(repls) > 0 {
		// Every statement was a removed nested class: keep the body valid.
		repls[0].text = "pass"
	}
	return applyReplacements(def, content, repls)
}

func pruneFunctionBody(def, body *tree_sitter.Node, content []byte, opts Options) string {
	if !opts.CollapseInnerFunctions {
		return tsutil.NodeText(def, content)
	}
	var repls []replacement
	for _, nested := range findNestedDefs(body) {
		repls = append(repls, replacement{nested.StartByte(), nested.EndByte(), ""})
	}
	return applyReplacements(def, content, repls)
}

// findNestedDefs walks node's descendants looking for function/class
// definitions (through decorated_definition) at any depth, without
// recursing into a match once found, so a function nested three levels
// deep inside nested if/for/try blocks is still found and removed whole.
func findNestedDefs(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		target := unwrapDecorated(child)
		if target.Kind() == "function_definition" || target.Kind() == "class_definition" {
			out = append(out, child)
			continue
		}
		out = append(out, findNestedDefs(child)...)
	}
	return out
}

// unwrapDecorated returns node's wrapped function_definition/class_definition
// if node is a decorated_definition, otherwise node itself.
func unwrapDecorated(node *tree_sitter.Node) *tree_sitter.Node {
	if node.Kind() != "decorated_definition" {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && (c.Kind() == "function_definition" || c.Kind() == "class_definition") {
			return c
		}
	}
	return node
}

// collapsedMethodText renders a method's decorators and signature line(s)
// verbatim, followed by a single indented `pass` in place of its body.
func collapsedMethodText(stmt, method *tree_sitter.Node, content []byte) string {
	body := method.ChildByFieldName("body")
	if body == nil {
		return tsutil.NodeText(stmt, content)
	}
	header := content[stmt.StartByte():body.StartByte()]
	indent := leadingIndent(content, body.StartByte())
	return strings.TrimRight(string(header), " \t\n") + "\n" + indent + "pass"
}

// leadingIndent walks backward from pos to the start of its line, returning
// the run of spaces/tabs found there.
func leadingIndent(content []byte, pos uint) string {
	lineStart := pos
	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < pos && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[lineStart:end])
}

// applyReplacements splices repls (each either a removal or a replacement
// text) into def's source text, in byte order, skipping any overlapping
// ranges.
func applyReplacements(def *tree_sitter.Node, content []byte, repls []replacement) string {
	if len(repls) == 0 {
		return tsutil.NodeText(def, content)
	}
	sort.Slice(repls, func(i, j int) bool { return repls[i].start < repls[j].start })

	var b strings.Builder
	cursor := def.StartByte()
	for _, r := range repls {
		if r.start < cursor {
			continue
		}
		b.Write(content[cursor:r.start])
		b.WriteString(r.text)
		cursor = r.end
	}
	b.Write(content[cursor:def.EndByte()])
	return b.String()
}
