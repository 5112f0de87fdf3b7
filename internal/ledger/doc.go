// Package ledger keeps a SQLite history of build runs and the per-record
// outcome of each one. It is write-only from the build's point of view:
// nothing read back from it influences what a later build does.
package ledger
