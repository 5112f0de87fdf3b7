// Package runner launches external executables and captures their output.
//
// Executor is the seam every tool client depends on; CommandExecutor is the
// os/exec implementation and Runner layers the optional timeout and logging
// on top of any Executor. A non-zero exit is reported through Outcome, while
// an error is reserved for failures that abort the whole build: the binary
// could not be started, or the caller's context ended.
package runner
