// Package preflight checks that a build can run before any record is
// processed: both external tools resolve and the source and output
// directories are usable. A failed check is a run-level error.
package preflight
