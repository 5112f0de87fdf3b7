// Package main hosts the suimu CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, folds command-line
// overrides into it, and hands the result to the internal packages: build
// runs the full pipeline, check reports rows that would be rejected, history
// reads the run ledger, deps and config help set up a machine. Keep the heavy
// lifting in internal/; commands here only wire and render.
package main
