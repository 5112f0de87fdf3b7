// Package ffmpeg converts downloaded sources into tagged m4a artifacts.
//
// Conversions stream into a hidden temporary file next to the destination and
// are renamed into place only after the transcoder exits cleanly, so a
// present output file always holds a complete conversion.
package ffmpeg
