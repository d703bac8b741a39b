// Package csv implements the record layer for delimited text: a zero-copy
// field tokenizer, a line reader that never buffers more than one line (plus
// an optional replayable sample), header helpers, and a streaming byte
// rewriter for known-bad sequences in real-world data.
package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// utf8BOM is stripped from the first line if present.
const utf8BOM = "\uFEFF"

// defaultReadBuffer is the bufio size used by NewLineReader.
const defaultReadBuffer = 256 * 1024

// LineReader yields the lines of a delimited-text stream one at a time.
//
// Line terminators ("\n" or "\r\n") are stripped from the returned text but
// counted in the reported size, so the sum of sizes equals the number of bytes
// consumed from the underlying reader.
//
// Sample reads ahead a bounded number of lines and keeps them for replay;
// subsequent ReadLine calls return the sampled lines first. This lets callers
// inspect the head of a stream (type inference, row-size estimation) without
// seeking, which makes standard input work the same as a file.
//
// LineReader is not safe for concurrent use.
type LineReader struct {
	br     *bufio.Reader
	first  bool
	eof    bool
	replay []sampledLine
	lines  int64
}

type sampledLine struct {
	text string
	size int
}

// NewLineReader wraps r. The reader is consumed lazily.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReaderSize(r, defaultReadBuffer), first: true}
}

// ReadLine returns the next line and its raw size in bytes. It returns io.EOF
// once the stream is exhausted; a final line without a terminator is returned
// normally before that.
func (lr *LineReader) ReadLine() (string, int, error) {
	if len(lr.replay) > 0 {
		l := lr.replay[0]
		lr.replay[0] = sampledLine{}
		lr.replay = lr.replay[1:]
		return l.text, l.size, nil
	}
	return lr.read()
}

// Lines reports how many lines have been read from the underlying stream,
// including sampled lines that have not been replayed yet.
func (lr *LineReader) Lines() int64 { return lr.lines }

// Sample reads up to n lines ahead and returns them. The lines stay queued and
// are returned again by ReadLine. Calling Sample again extends the queue only
// if it holds fewer than n lines.
func (lr *LineReader) Sample(n int) ([]string, error) {
	for len(lr.replay) < n {
		text, size, err := lr.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		lr.replay = append(lr.replay, sampledLine{text: text, size: size})
	}
	k := min(n, len(lr.replay))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = lr.replay[i].text
	}
	return out, nil
}

// SampleSizes returns the raw byte sizes of the currently queued sample lines.
func (lr *LineReader) SampleSizes() []int {
	out := make([]int, len(lr.replay))
	for i, l := range lr.replay {
		out[i] = l.size
	}
	return out
}

func (lr *LineReader) read() (string, int, error) {
	if lr.eof {
		return "", 0, io.EOF
	}
	s, err := lr.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", 0, fmt.Errorf("read line %d: %w", lr.lines+1, err)
		}
		lr.eof = true
		if s == "" {
			return "", 0, io.EOF
		}
	}
	size := len(s)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	if lr.first {
		s = strings.TrimPrefix(s, utf8BOM)
		lr.first = false
	}
	lr.lines++
	return s, size, nil
}

// DecodeReader wraps r with a decoder for the named character set (any WHATWG
// label such as "windows-1250", "latin2" or "shift_jis"). An empty name or any
// UTF-8 label returns r unchanged.
func DecodeReader(r io.Reader, charset string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(r), nil
}
