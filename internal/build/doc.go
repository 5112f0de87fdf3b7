// Package build runs the download and convert loop over a planned record set
// and ties the whole build command together.
//
// Builder processes records strictly in order on the calling goroutine. A
// failed download is remembered for the rest of the run so sibling clips of
// the same upload are not fetched again; a failed conversion only affects its
// own record. Pipeline wraps the loop with input decoding, preflight checks,
// the library lock, catalog emission, and the history ledger.
package build
