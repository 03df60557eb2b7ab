package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvm-shlee/pyslice/internal/config"
	"github.com/dvm-shlee/pyslice/internal/pipeline"
	"github.com/dvm-shlee/pyslice/pkg/pyslice"
)

var (
	configPath               string
	jsonOutput               bool
	badgeOutput              bool
	entryNames               []string
	rejectStdlibEntry        bool
	offlinePyPI              bool
	packageOverrides         []string
	noCollapseInnerFunctions bool
	noCollapseMethods        bool
	noSortImports            bool
	dropDynamicImports       bool
)

var isolateCmd = &cobra.Command{
	Use:   "isolate <file.py>",
	Short: "Isolate a minimal, self-contained slice starting from one or more entries",
	Long: `Isolate extracts a minimal, self-contained Python source slice starting
from one or more entry function or class definitions in file.py, given by
one or more --entry NAME flags. The reachability graph of free names over
the defining module is closed, nested definitions are pruned from the
rendered output, and the result is written to stdout alongside a
classified list of import requirements.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %s", err)
		}

		if err := validateEntryFile(path); err != nil {
			return err
		}
		if len(entryNames) == 0 {
			return fmt.Errorf("at least one --entry NAME is required")
		}

		overrides, err := parsePackageOverrides(packageOverrides)
		if err != nil {
			return err
		}

		opts := pyslice.Options{
			RejectStdlibEntry:        rejectStdlibEntry,
			OfflinePyPI:              offlinePyPI,
			PackageOverrides:         overrides,
			NoCollapseInnerFunctions: noCollapseInnerFunctions,
			NoCollapseMethods:        noCollapseMethods,
			NoSortImports:            noSortImports,
			DropDynamicImports:       dropDynamicImports,
		}

		projectCfg, err := config.LoadProjectConfig(filepath.Dir(path), configPath)
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		projectCfg.ApplyToOptions(&opts)

		entries := make([]pyslice.Entry, 0, len(entryNames))
		for _, name := range entryNames {
			entries = append(entries, pyslice.Entry{Path: path, Name: name})
		}

		spinner := pipeline.NewSpinner(os.Stderr)
		onProgress := func(stage, detail string) {
			spinner.Update(detail)
		}
		spinner.Start("Isolating...")

		p := pipeline.New(cmd.OutOrStdout(), jsonOutput, onProgress)
		p.SetBadgeOutput(badgeOutput)

		err = p.Run(context.Background(), entries, opts)
		if err != nil {
			spinner.Stop("")
			return err
		}
		spinner.Stop("Done.")

		return nil
	},
}

func init() {
	isolateCmd.Flags().StringVar(&configPath, "config", "", "path to .pysliceirc.yml project config file")
	isolateCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	isolateCmd.Flags().BoolVar(&badgeOutput, "badge", false, "print a shields.io badge summarizing requirement health")
	isolateCmd.Flags().StringArrayVar(&entryNames, "entry", nil, "name of a top-level function or class to isolate (repeatable)")
	isolateCmd.Flags().BoolVar(&rejectStdlibEntry, "reject-stdlib-entry", false, "error instead of isolating when an entry's own module is stdlib")
	isolateCmd.Flags().BoolVar(&offlinePyPI, "offline-pypi", false, "skip the PyPI existence check, classifying unmapped imports as unknown")
	isolateCmd.Flags().StringArrayVar(&packageOverrides, "package-override", nil, "force a top-level import name to a distribution name, as name=dist (repeatable)")
	isolateCmd.Flags().BoolVar(&noCollapseInnerFunctions, "no-collapse-inner-functions", false, "keep nested function/class definitions instead of splicing them out")
	isolateCmd.Flags().BoolVar(&noCollapseMethods, "no-collapse-methods", false, "keep method bodies verbatim instead of collapsing them to pass")
	isolateCmd.Flags().BoolVar(&noSortImports, "no-sort-imports", false, "render imports in first-discovery order instead of sorted")
	isolateCmd.Flags().BoolVar(&dropDynamicImports, "drop-dynamic-imports", false, "omit dynamic-import assignment statements from the rendered output")
	rootCmd.AddCommand(isolateCmd)
}

// validateEntryFile checks that path exists, is a regular file, and has a
// .py extension.
func validateEntryFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %s", err)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", path)
	}
	if filepath.Ext(path) != ".py" {
		return fmt.Errorf("not a Python source file: %s", path)
	}
	return nil
}

// parsePackageOverrides parses repeated name=dist flag values into a map.
func parsePackageOverrides(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(raw))
	for _, r := range raw {
		name, dist, ok := strings.Cut(r, "=")
		if !ok || name == "" || dist == "" {
			return nil, fmt.Errorf("invalid --package-override %q, want name=dist", r)
		}
		overrides[name] = dist
	}
	return overrides, nil
}
