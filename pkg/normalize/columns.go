package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ColumnName canonicalises a raw header: accents are folded, the result is
// lowercased, spaces become underscores, any other character outside
// [a-z0-9_] becomes an underscore, runs of underscores collapse and leading
// or trailing underscores are trimmed.
func ColumnName(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// ColumnNames canonicalises every header, returning a rename mapping that
// only contains names that actually change.
func ColumnNames(raw []string) map[string]string {
	out := make(map[string]string)
	for _, c := range raw {
		if n := ColumnName(c); n != c && n != "" {
			out[c] = n
		}
	}
	return out
}
