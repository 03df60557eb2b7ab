package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dvm-shlee/pyslice/internal/acquire"
	"github.com/dvm-shlee/pyslice/internal/discovery"
	"github.com/dvm-shlee/pyslice/internal/index"
	"github.com/dvm-shlee/pyslice/internal/parser"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <dir>",
	Short: "List Python files and their top-level function/class entries under a directory",
	Long: `Discover walks a directory tree for Python source files, honoring
.gitignore, and lists the top-level function and class names each file
defines, the candidate --entry values for the isolate command. Test files
(test_*.py, *_test.py) are listed alongside ordinary source, marked with a
"(test)" suffix.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		walker := discovery.NewWalker()
		result, err := walker.Discover(root)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}

		tsParser, err := parser.NewTreeSitterParser()
		if err != nil {
			return err
		}
		defer tsParser.Close()

		out := cmd.OutOrStdout()
		sort.Slice(result.Files, func(i, j int) bool {
			return result.Files[i].RelPath < result.Files[j].RelPath
		})

		for _, f := range result.Files {
			names, err := entryNamesInFile(tsParser, f.Path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping %s: %v\n", f.RelPath, err)
				continue
			}
			label := f.RelPath
			if f.Class == discovery.ClassTest {
				label += " (test)"
			}
			if len(names) == 0 {
				fmt.Fprintf(out, "%s\n", label)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", label, joinSorted(names))
		}

		if result.SkippedCount > 0 || result.SymlinkCount > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d unreadable path(s), %d symlink(s)\n", result.SkippedCount, result.SymlinkCount)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

// entryNamesInFile parses path and returns the names of its top-level
// function and class definitions, the set usable as isolate --entry values.
func entryNamesInFile(tsParser *parser.TreeSitterParser, path string) ([]string, error) {
	source, err := acquire.FromFile(path)
	if err != nil {
		return nil, err
	}
	pf, err := tsParser.ParseModule(path, []byte(source))
	if err != nil {
		return nil, err
	}
	defer pf.Tree.Close()

	idx := index.Build(path, parser.EffectiveRoot(pf.Tree.RootNode()), pf.Content, index.Options{CollapseInnerFunctions: true, CollapseMethods: true})
	names := make([]string, 0, len(idx.Defs))
	for name := range idx.Defs {
		names = append(names, name)
	}
	return names, nil
}

func joinSorted(names []string) string {
	sort.Strings(names)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
