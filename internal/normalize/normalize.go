// Package normalize turns free-text substation, feeder and flag values into
// comparable keys. Every key comparison in the service goes through Key.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSubstationMarker is the token generation sources omit in front of
// substation names ("S/E LOS ANGELES" vs "LOS ANGELES").
const DefaultSubstationMarker = "S/E"

// values produced when an absent cell is stringified upstream
var placeholders = map[string]struct{}{
	"":     {},
	"NAN":  {},
	"NONE": {},
	"NULL": {},
	"NIL":  {},
}

// Key uppercases text, folds accented letters to their ASCII base, replaces
// anything outside [A-Z0-9/ -] with a space and collapses whitespace.
// Key(Key(x)) == Key(x) for every x.
func Key(text string) string {
	folded := strings.ToUpper(stripMarks(text))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if allowed(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Marker returns the normalized form of a substation marker, falling back to
// DefaultSubstationMarker when nothing of it survives normalization.
func Marker(marker string) string {
	if m := Key(marker); m != "" {
		return m
	}
	return DefaultSubstationMarker
}

// WithPrefix uppercases and trims text and prepends the normalized marker
// followed by a space, unless text already starts with it.
func WithPrefix(text, marker string) string {
	m := Marker(marker)
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == m || strings.HasPrefix(s, m+" ") {
		return s
	}
	return m + " " + s
}

// SubstationKey is the key both sources are matched on: the normalized name
// with the substation marker guaranteed in front. It is idempotent for any
// marker spelling.
func SubstationKey(name, marker string) string {
	return Key(WithPrefix(Key(name), marker))
}

// IsPlaceholder reports whether key is blank or one of the textual markers
// left behind by an empty cell.
func IsPlaceholder(key string) bool {
	_, ok := placeholders[key]
	return ok
}

func stripMarks(s string) string {
	// transformers are stateful, build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func allowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '/', r == ' ', r == '-':
		return true
	}
	return false
}
