// Package platform defines the closed set of source platforms suimu can
// download from and the immutable registry describing each one.
//
// The Registry is constructed once at startup and handed to every component
// that needs URL templates, downloader format selectors, or source file
// extensions. It covers every Platform variant by construction, so Lookup
// never fails at runtime.
package platform
