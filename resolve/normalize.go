package resolve

import "strings"

// NormalizeText canonicalizes a free-text name for comparison: uppercase
// with everything but letters and digits removed.
func NormalizeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalizer canonicalizes substation names for registry matching.
// After the text pass it strips known technology-type suffix tokens
// (storage/solar/wind markers) from the end of the name.
type Normalizer struct {
	suffixes []string
}

// NewNormalizer creates a Normalizer with the given ordered suffix list.
// Suffixes are normalized themselves so the comparison stays consistent.
func NewNormalizer(suffixes []string) *Normalizer {
	n := &Normalizer{}
	for _, s := range suffixes {
		if norm := NormalizeText(s); norm != "" {
			n.suffixes = append(n.suffixes, norm)
		}
	}
	return n
}

// Normalize canonicalizes a raw substation name. A suffix is only stripped
// when it is a true trailing token and the remainder keeps at least three
// characters beyond it, so short names are never gutted. Stripping repeats
// until no suffix applies, which makes Normalize idempotent even for
// stacked suffixes like "X_ESS_WND".
func (n *Normalizer) Normalize(raw string) string {
	s := NormalizeText(raw)
	for changed := true; changed; {
		changed = false
		for _, suffix := range n.suffixes {
			if strings.HasSuffix(s, suffix) && len(s) > len(suffix)+2 {
				s = s[:len(s)-len(suffix)]
				changed = true
			}
		}
	}
	return s
}
