// Package logging builds the slog loggers used across suimu.
//
// New selects between a compact console handler and a JSON handler, writes
// to stderr plus an optional log file, and honours the configured level.
// Attribute helpers and the WarnWithContext convention keep warnings uniform:
// every warning carries an event_type, an error_hint for the operator, and
// the impact on the build. WithContext stamps run and record identifiers
// taken from a context.
package logging
