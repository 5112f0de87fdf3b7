// Package services defines shared utilities consumed by the build pipeline and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, record identities, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper, and the Fatal
//     classification the CLI uses to pick an exit status.
//
// Subpackages wrap individual executables (runner, ytdlp, ffmpeg) behind
// small interfaces so the orchestrator can be exercised without them.
package services
