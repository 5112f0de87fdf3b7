// Package artifact maps normalized records onto the files that back them.
//
// A Resolver derives the output and source paths for a record and classifies
// the work still required by probing the filesystem. Plan partitions a record
// set into the items the build orchestrator must process.
package artifact
