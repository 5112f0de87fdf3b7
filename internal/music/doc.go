// Package music turns loosely-typed catalog rows into validated domain records
// and derives the content identity that names each produced artifact.
//
// Key pieces:
//   - RawRecord: string fields exactly as decoded from the tabular source.
//   - Record: the normalized, immutable domain record with its identity.
//   - Normalize/Construct/CheckLogic: construction and logic validation,
//     failing with a *RejectionError whose Reason callers can branch on.
//   - Identity/FormatSeconds: the XXH64-based identity contract shared with
//     existing catalogs.
package music
