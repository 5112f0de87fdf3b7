package platform

import (
	"fmt"
	"strings"
)

// Platform identifies a supported media source.
type Platform int

const (
	Twitter Platform = iota
	Bilibili
	YouTube

	count
)

var codes = [count]string{
	Twitter:  "TWITTER",
	Bilibili: "BILIBILI",
	YouTube:  "YOUTUBE",
}

// All returns every supported platform in declaration order.
func All() []Platform {
	out := make([]Platform, 0, count)
	for p := Platform(0); p < count; p++ {
		out = append(out, p)
	}
	return out
}

// Parse resolves a platform code such as "YOUTUBE". Codes are case-sensitive
// because they participate in identity hashing.
func Parse(code string) (Platform, error) {
	for p := Platform(0); p < count; p++ {
		if codes[p] == code {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unsupported platform %q", code)
}

// Valid reports whether p is one of the declared variants.
func (p Platform) Valid() bool {
	return p >= 0 && p < count
}

// String returns the canonical platform code.
func (p Platform) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return codes[p]
}

// Info describes how a platform's media is addressed and fetched.
type Info struct {
	URLTemplate     string
	FormatSelector  string
	SourceExtension string
}

// SourceURL substitutes the id placeholder in the URL template once.
func (i Info) SourceURL(externalID string) string {
	return strings.Replace(i.URLTemplate, "{}", externalID, 1)
}

func (i Info) complete() bool {
	return strings.Contains(i.URLTemplate, "{}") &&
		strings.TrimSpace(i.FormatSelector) != "" &&
		strings.TrimSpace(i.SourceExtension) != ""
}
