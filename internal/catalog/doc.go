// Package catalog projects built records into the published JSON catalog and
// computes the add/remove difference against the catalog of a previous run.
//
// Entries compare structurally, field by field, with the timestamp compared
// as an instant. A baseline is only available when a previous catalog file
// exists; the first build against a library therefore emits no diff.
package catalog
