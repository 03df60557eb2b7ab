// Package version provides the pyslice tool version.
package version

// Version is the pyslice tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/dvm-shlee/pyslice/pkg/version.Version=2.0.1"
var Version = "dev"
