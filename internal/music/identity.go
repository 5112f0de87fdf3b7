package music

import (
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"suimu/internal/platform"
)

// IdentitySeed is the XXH64 seed used by every suimu-compatible catalog.
const IdentitySeed uint64 = 0x9f88f860

// IdentityFields lists the inputs that define artifact identity. Comment and
// status are intentionally absent: they do not change the produced audio.
type IdentityFields struct {
	Platform   platform.Platform
	ExternalID string
	ClipStart  *float64
	ClipEnd    *float64
	Title      string
	Artist     string
	Performer  string
}

// Identity returns the 16 character lowercase hex digest for fields.
func Identity(fields IdentityFields) string {
	d := xxhash.NewWithSeed(IdentitySeed)
	for _, part := range []string{
		fields.Platform.String(),
		fields.ExternalID,
		formatBound(fields.ClipStart),
		formatBound(fields.ClipEnd),
		fields.Title,
		fields.Artist,
		fields.Performer,
	} {
		_, _ = d.WriteString(part)
	}
	return formatDigest(d.Sum64())
}

func formatDigest(sum uint64) string {
	hex := strconv.FormatUint(sum, 16)
	if len(hex) < 16 {
		hex = strings.Repeat("0", 16-len(hex)) + hex
	}
	return hex
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatSeconds(*v)
}

// FormatSeconds renders a clip bound the way catalogs have always hashed it:
// the shortest round-trip decimal, with ".0" on integral values and exponent
// notation outside [1e-4, 1e16).
func FormatSeconds(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v != 0 {
		exp := decimalExponent(v)
		if exp < -4 || exp >= 16 {
			return strconv.FormatFloat(v, 'e', -1, 64)
		}
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func decimalExponent(v float64) int {
	s := strconv.FormatFloat(v, 'e', -1, 64)
	idx := strings.IndexByte(s, 'e')
	if idx < 0 {
		return 0
	}
	exp, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return 0
	}
	return exp
}
