// Package check validates a decoded spreadsheet without touching the
// filesystem or running any tool, reporting every row that a build would
// skip and why.
package check
