package csv

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseHeader splits a header line into column names. Quoted names are
// unescaped and surrounding whitespace is trimmed.
func ParseHeader(line string, sep, quote byte) []string {
	var names []string
	sp := NewSplitter(line, sep, quote)
	for {
		f, ok := sp.Next()
		if !ok {
			break
		}
		f = strings.TrimSpace(f)
		if len(f) >= 2 && f[0] == quote && f[len(f)-1] == quote {
			f = f[1 : len(f)-1]
		}
		names = append(names, strings.TrimSpace(Unquote(f, quote)))
	}
	return names
}

// ArtificialNames returns col0, col1, ... for files without a header row.
func ArtificialNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "col" + strconv.Itoa(i)
	}
	return out
}

// NormalizeName converts a human-readable column name into an identifier
// suitable for SQL schemas and export formats:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "col" if empty
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}

// NormalizeNames applies NormalizeName to every name and de-duplicates the
// results by appending _2, _3, ... to repeats.
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		base := NormalizeName(n)
		seen[base]++
		if c := seen[base]; c > 1 {
			base = base + "_" + strconv.Itoa(c)
		}
		out[i] = base
	}
	return out
}
