package csv

import (
	"iter"
	"strings"
)

// escapeByte marks the next byte as literal, both inside and outside quotes.
const escapeByte = '\\'

// Splitter yields the fields of a single record line. Fields are substrings of
// the original line (no copying). Quoted fields are returned without their
// surrounding quotes; everything else, including escape markers and doubled
// quotes, is returned verbatim.
//
// The separator and quote must be single-byte ASCII characters, which keeps
// every split point on a UTF-8 boundary.
//
// Splitter never fails. Unbalanced quoting degrades to best-effort slicing:
// an unterminated quoted field runs to the end of the line.
type Splitter struct {
	line  string
	sep   byte
	quote byte
	pos   int
	done  bool
}

// NewSplitter returns a Splitter positioned at the start of line.
func NewSplitter(line string, sep, quote byte) *Splitter {
	return &Splitter{line: line, sep: sep, quote: quote}
}

// Next returns the next field and true, or "" and false once the line is
// exhausted. An empty line yields a single empty field.
func (s *Splitter) Next() (string, bool) {
	if s.done {
		return "", false
	}
	start := s.pos
	n := len(s.line)

	if start < n && s.line[start] == s.quote {
		return s.quoted(start + 1)
	}

	i := start
	for i < n {
		c := s.line[i]
		if c == escapeByte {
			i += 2
			continue
		}
		if c == s.sep {
			s.pos = i + 1
			return s.line[start:i], true
		}
		i++
	}
	s.done = true
	return s.line[start:min(i, n)], true
}

// quoted scans a quoted field whose body starts at from. The field ends at a
// quote that is followed by the separator or the end of the line.
func (s *Splitter) quoted(from int) (string, bool) {
	n := len(s.line)
	i := from
	for i < n {
		c := s.line[i]
		switch {
		case c == escapeByte:
			i += 2
			continue
		case c == s.quote:
			if i+1 == n {
				s.done = true
				return s.line[from:i], true
			}
			next := s.line[i+1]
			if next == s.sep {
				s.pos = i + 2
				return s.line[from:i], true
			}
			if next == s.quote {
				// doubled quote: embedded literal
				i += 2
				continue
			}
		}
		i++
	}
	s.done = true
	return s.line[from:min(i, n)], true
}

// Fields returns a lazy sequence over the fields of line. Each call to the
// returned sequence starts over from the beginning of the line.
func Fields(line string, sep, quote byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		sp := NewSplitter(line, sep, quote)
		for {
			f, ok := sp.Next()
			if !ok || !yield(f) {
				return
			}
		}
	}
}

// Split collects all fields of line into dst (reusing its backing array) and
// returns the result.
func Split(dst []string, line string, sep, quote byte) []string {
	dst = dst[:0]
	sp := NewSplitter(line, sep, quote)
	for {
		f, ok := sp.Next()
		if !ok {
			return dst
		}
		dst = append(dst, f)
	}
}

// Quote renders value so that Splitter reads it back as a single field. The
// value is wrapped in quotes, with embedded quotes doubled, when it contains
// the separator, the quote, a backslash or a line break; otherwise it is
// returned unchanged.
func Quote(value string, sep, quote byte) string {
	if !needsQuote(value, sep, quote) {
		return value
	}
	q := string(quote)
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case quote:
			b.WriteString(q + q)
		case escapeByte:
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// Unquote reverses the escaping applied by Quote on a quoted field body:
// doubled quotes collapse to one and backslash escapes are removed.
func Unquote(field string, quote byte) string {
	if strings.IndexByte(field, quote) < 0 && strings.IndexByte(field, escapeByte) < 0 {
		return field
	}
	var b strings.Builder
	b.Grow(len(field))
	for i := 0; i < len(field); i++ {
		c := field[i]
		switch {
		case c == escapeByte && i+1 < len(field):
			i++
			b.WriteByte(field[i])
		case c == quote && i+1 < len(field) && field[i+1] == quote:
			i++
			b.WriteByte(quote)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func needsQuote(value string, sep, quote byte) bool {
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case sep, quote, escapeByte, '\n', '\r':
			return true
		}
	}
	return false
}
