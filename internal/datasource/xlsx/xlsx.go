// Package xlsx adapts a spreadsheet worksheet to the delimited-text stream
// the rest of rsv consumes. Each row is re-serialized with csv.Quote, so the
// field tokenizer reads back exactly the cell values.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
)

// ErrNoSheets is returned for workbooks without worksheets.
var ErrNoSheets = errors.New("xlsx: workbook has no sheets")

// Sheet is a data source reading one worksheet of an .xlsx file.
type Sheet struct {
	path  string
	sheet string
	sep   byte
	quote byte
}

// New returns a source for the named sheet of path. An empty sheet selects
// the first one. sep and quote must match the parser settings.
func New(path, sheet string, sep, quote byte) *Sheet {
	return &Sheet{path: path, sheet: sheet, sep: sep, quote: quote}
}

// Name returns "path[sheet]" or the path alone when no sheet is named.
func (s *Sheet) Name() string {
	if s.sheet == "" {
		return s.path
	}
	return s.path + "[" + s.sheet + "]"
}

// Open opens the workbook and streams the sheet as delimited lines. The
// workbook stays open until the returned reader is closed.
func (s *Sheet) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	name, err := pickSheet(f, s.sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	rows, err := f.Rows(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}

	pr, pw := io.Pipe()
	go func() {
		err := writeRows(ctx, pw, rows, s.sep, s.quote)
		if cerr := rows.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()
	return &sheetReader{PipeReader: pr, file: f}, nil
}

func pickSheet(f *excelize.File, want string) (string, error) {
	list := f.GetSheetList()
	if len(list) == 0 {
		return "", ErrNoSheets
	}
	if want == "" {
		return list[0], nil
	}
	for _, n := range list {
		if n == want {
			return n, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (have %s)", want, strings.Join(list, ", "))
}

// writeRows serializes every row to w. Rows are padded to the width of the
// first row because the iterator drops trailing empty cells.
func writeRows(ctx context.Context, w io.Writer, rows *excelize.Rows, sep, quote byte) error {
	var (
		width int
		line  []byte
	)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		cells, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if width == 0 {
			width = len(cells)
		}
		line = line[:0]
		n := max(len(cells), width)
		for i := 0; i < n; i++ {
			if i > 0 {
				line = append(line, sep)
			}
			if i < len(cells) {
				line = append(line, csv.Quote(flatten(cells[i]), sep, quote)...)
			}
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return rows.Error()
}

// flatten replaces line breaks inside a cell with spaces; the line reader
// splits records on '\n' before the tokenizer sees quotes.
func flatten(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(v)
}

type sheetReader struct {
	*io.PipeReader
	file *excelize.File
}

// Close stops the writer goroutine and closes the workbook.
func (r *sheetReader) Close() error {
	r.PipeReader.Close()
	return r.file.Close()
}
