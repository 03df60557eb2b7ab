package pyslice

import "errors"

// ErrNoEntries is returned when Isolate is called with zero entries: there
// is nothing to close a reachability graph over.
var ErrNoEntries = errors.New("pyslice: no entries given")

// ErrRejectedStdlibEntry is returned when an entry names a definition that
// lives in a module classified as stdlib and Options.RejectStdlibEntry is
// set: isolating a standard-library function's own source is almost always
// a mistake, since the point of isolation is to carry code out of its
// environment, not to re-vendor the environment itself.
var ErrRejectedStdlibEntry = errors.New("pyslice: entry lives in a stdlib module")

// ExitError carries a process exit code alongside an error message, for
// commands that need to distinguish failure modes (e.g. a non-zero exit
// for unresolved requirements vs. a usage error) at the CLI boundary.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }
