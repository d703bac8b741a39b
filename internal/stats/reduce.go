package stats

import (
	"fmt"

	csvparser "github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
)

// Reduction returns the pipeline reduction that fills a clone of template
// per chunk and merges the clones. Records that are too short are reported
// to diag with their line number.
func Reduction(template *Set, sep, quote byte, diag *pipeline.Diagnostics) pipeline.Reduction[*Set] {
	return pipeline.Reduction[*Set]{
		New: template.Clone,
		Process: func(acc *Set, c pipeline.Chunk) (*Set, error) {
			var fields []string
			for i, line := range c.Lines {
				fields = csvparser.Split(fields, line, sep, quote)
				if !acc.Accept(fields) {
					diag.Add(fmt.Sprintf("line %d: %d fields, need at least %d", c.First+int64(i), len(fields), acc.maxIndex+1))
				}
			}
			return acc, nil
		},
		Merge: func(dst, src *Set) (*Set, error) {
			return dst, dst.Merge(src)
		},
	}
}
