package csv

import (
	"bufio"
	"bytes"
	"io"
)

// ScrubRule replaces every occurrence of From with To in the raw byte stream,
// before any line splitting happens. It exists for datasets that carry a
// known broken sequence (for example an unbalanced quote inside an
// organisation name) that would otherwise derail field splitting.
type ScrubRule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WithScrub wraps r so that every rule is applied in order. Rules with an
// empty From are ignored. When no rule applies, r is returned unchanged.
func WithScrub(r io.Reader, rules []ScrubRule) io.Reader {
	for _, rule := range rules {
		if rule.From == "" || rule.From == rule.To {
			continue
		}
		r = newStreamingRewriter(r, []byte(rule.From), []byte(rule.To))
	}
	return r
}

// streamingRewriter is an io.Reader that performs a streaming, rolling
// find/replace: it replaces all occurrences of pat with repl without buffering
// the entire stream. To correctly match sequences that may span chunk
// boundaries, it retains the last len(pat)-1 bytes (carry) from each processed
// block and prepends them to the next block before replacement.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	tmp   []byte
	carry []byte       // last len(pat)-1 bytes retained between reads
	buf   bytes.Buffer // pending output to satisfy Read
	eof   bool
}

func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		tmp:   make([]byte, 64*1024),
		carry: make([]byte, 0, max(len(pat)-1, 0)),
	}
}

// Read fills p from the internal buffer; when empty, it reads the next block
// from the underlying reader, performs the replacement, and withholds the
// trailing len(pat)-1 bytes as carry for the next call. On EOF it flushes the
// remaining carry.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for sr.buf.Len() == 0 {
		if sr.eof {
			return 0, io.EOF
		}
		if err := sr.fill(); err != nil {
			return 0, err
		}
	}
	return sr.buf.Read(p)
}

func (sr *streamingRewriter) fill() error {
	n, rerr := sr.br.Read(sr.tmp)
	if n > 0 {
		block := sr.tmp[:n]

		// Prepend carry to handle cross-boundary matches.
		if len(sr.carry) > 0 {
			joined := make([]byte, 0, len(sr.carry)+len(block))
			joined = append(joined, sr.carry...)
			joined = append(joined, block...)
			block = joined
		}

		block = bytes.ReplaceAll(block, sr.pat, sr.repl)

		k := len(sr.pat) - 1
		if k > 0 && len(block) > k {
			sr.buf.Write(block[:len(block)-k])
			sr.carry = append(sr.carry[:0], block[len(block)-k:]...)
		} else if k > 0 {
			sr.carry = append(sr.carry[:0], block...)
		} else {
			sr.buf.Write(block)
		}
	}

	switch {
	case rerr == io.EOF:
		if len(sr.carry) > 0 {
			sr.buf.Write(sr.carry)
			sr.carry = sr.carry[:0]
		}
		sr.eof = true
	case rerr != nil:
		return rerr
	}
	return nil
}
