package platform

import "fmt"

// Registry maps every Platform to its Info. The zero value is unusable; build
// one with NewRegistry or NewRegistryFrom.
type Registry struct {
	entries [count]Info
}

// DefaultInfo returns the built-in settings for each platform.
func DefaultInfo() map[Platform]Info {
	return map[Platform]Info{
		YouTube: {
			URLTemplate:     "https://www.youtube.com/watch?v={}",
			FormatSelector:  "bestaudio[ext=m4a]",
			SourceExtension: "mp4",
		},
		Twitter: {
			URLTemplate:     "https://www.twitter.com/i/status/{}",
			FormatSelector:  "best[ext=mp4]",
			SourceExtension: "mp4",
		},
		Bilibili: {
			URLTemplate:     "https://www.bilibili.com/video/{}",
			FormatSelector:  "best[ext=flv]",
			SourceExtension: "flv",
		},
	}
}

// NewRegistry builds the registry from DefaultInfo.
func NewRegistry() (*Registry, error) {
	return NewRegistryFrom(DefaultInfo())
}

// NewRegistryFrom builds a registry and fails unless every platform has a
// complete entry.
func NewRegistryFrom(infos map[Platform]Info) (*Registry, error) {
	r := &Registry{}
	for p, info := range infos {
		if !p.Valid() {
			return nil, fmt.Errorf("platform registry: unknown platform %d", int(p))
		}
		r.entries[p] = info
	}
	for _, p := range All() {
		if !r.entries[p].complete() {
			return nil, fmt.Errorf("platform registry: incomplete entry for %s", p)
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for wiring code and tests where the built-in
// table is known to be complete.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the settings for p. Passing a value outside the declared
// variants is a programming error.
func (r *Registry) Lookup(p Platform) Info {
	if !p.Valid() {
		panic(fmt.Sprintf("platform registry: lookup of invalid %s", p))
	}
	return r.entries[p]
}

// SourceURL is a shortcut for Lookup(p).SourceURL(externalID).
func (r *Registry) SourceURL(p Platform, externalID string) string {
	return r.Lookup(p).SourceURL(externalID)
}
