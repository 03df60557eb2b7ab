package acquire

import (
	"fmt"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dvm-shlee/pyslice/internal/parser"
	"github.com/dvm-shlee/pyslice/internal/tsutil"
)

// SessionFragment is one executed cell's source and sequence number, as
// recorded by an interactive session's history.
type SessionFragment struct {
	CellID int
	Source string
}

// SessionProvider supplies the history of an interactive session, in
// execution order.
type SessionProvider interface {
	History() ([]SessionFragment, error)
}

// FixedSessionProvider is a SessionProvider backed by an in-memory
// fragment list, used for tests and for any caller that already has a
// session transcript rather than a live interpreter to query.
type FixedSessionProvider struct {
	Fragments []SessionFragment
}

// History returns the fixed fragment list.
func (p *FixedSessionProvider) History() ([]SessionFragment, error) {
	return p.Fragments, nil
}

// FromSession concatenates a session's executed cells into one source blob,
// in history order, each cell separated by a `# CellID[n]` marker so a later
// entry lookup can still attribute a definition to the cell that produced
// it. Fragments that fail to parse are skipped entirely. FromSession errors
// with ErrNoSource unless at least one surviving fragment defines, at its
// top level, one of the given entry names.
func FromSession(tsParser *parser.TreeSitterParser, provider SessionProvider, entryNames []string) (string, error) {
	fragments, err := provider.History()
	if err != nil {
		return "", err
	}

	wanted := make(map[string]bool, len(entryNames))
	for _, n := range entryNames {
		wanted[n] = true
	}

	var b strings.Builder
	found := false
	for _, f := range fragments {
		pf, err := tsParser.ParseModule(fmt.Sprintf("<cell %d>", f.CellID), []byte(f.Source))
		if err != nil {
			continue
		}
		root := pf.Tree.RootNode()
		if tsutil.HasParseError(root) {
			pf.Tree.Close()
			continue
		}
		if fragmentDefinesAny(root, []byte(f.Source), wanted) {
			found = true
		}
		pf.Tree.Close()

		b.WriteString("# CellID[")
		b.WriteString(strconv.Itoa(f.CellID))
		b.WriteString("]\n")
		b.WriteString(f.Source)
		if !strings.HasSuffix(f.Source, "\n") {
			b.WriteString("\n")
		}
	}

	if !found {
		return "", ErrNoSource
	}
	return b.String(), nil
}

// fragmentDefinesAny reports whether root's top-level statements bind one
// of the wanted names via a (possibly decorated) function or class
// definition.
func fragmentDefinesAny(root *tree_sitter.Node, content []byte, wanted map[string]bool) bool {
	if root == nil || len(wanted) == 0 {
		return false
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
		if nameNode != nil && wanted[tsutil.NodeText(nameNode, content)] {
			return true
		}
	}
	return false
}
