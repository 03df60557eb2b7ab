package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvm-shlee/pyslice/pkg/pyslice"
	"github.com/dvm-shlee/pyslice/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "pyslice",
	Short:   "pyslice - isolate a minimal, self-contained Python source slice",
	Long:    "pyslice extracts a minimal, self-contained Python source file starting\nfrom one or more entry function or class definitions. It closes the\nreachability graph of free names over the defining module, prunes nested\ndefinitions, and renders deterministic, directly-runnable source text\nalongside a classified import requirements list.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *pyslice.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
