// Package ytdlp drives a youtube-dl compatible downloader to fetch the source
// media for a record into the source directory.
package ytdlp
