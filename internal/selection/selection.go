// Package selection resolves a user-facing column specification into
// concrete column indices.
//
// A specification is a comma-separated list of terms:
//
//	2        a single index (0-based)
//	1-3      an inclusive range
//	3-       from index 3 to the last column
//	-1       the last column (-2 is the one before it, and so on)
//	name     a header name, matched exactly, then case-insensitively
//
// An empty specification selects every column.
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrOutOfRange is returned when a term refers to a column the input does
// not have.
var ErrOutOfRange = errors.New("column out of range")

// Selection is a resolved specification.
type Selection struct {
	// Indices are the selected columns in specification order.
	Indices []int
	// All is set when the specification was empty.
	All bool
}

// Resolve interprets spec against an input with the given header names (or
// artificial names when the input has no header). Duplicate terms are kept.
func Resolve(spec string, names []string) (Selection, error) {
	n := len(names)
	spec = strings.TrimSpace(spec)
	if spec == "" {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return Selection{Indices: idx, All: true}, nil
	}

	var out []int
	for _, raw := range strings.Split(spec, ",") {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		got, err := resolveTerm(term, names)
		if err != nil {
			return Selection{}, err
		}
		out = append(out, got...)
	}
	if len(out) == 0 {
		return Selection{}, fmt.Errorf("column spec %q selects nothing", spec)
	}
	return Selection{Indices: out}, nil
}

func resolveTerm(term string, names []string) ([]int, error) {
	n := len(names)

	// -k: k-th column from the end
	if strings.HasPrefix(term, "-") {
		if k, err := strconv.Atoi(term[1:]); err == nil {
			if k < 1 || k > n {
				return nil, fmt.Errorf("%w: %q with %d columns", ErrOutOfRange, term, n)
			}
			return []int{n - k}, nil
		}
	}

	if i, err := strconv.Atoi(term); err == nil {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: %d with %d columns", ErrOutOfRange, i, n)
		}
		return []int{i}, nil
	}

	if lo, hi, ok := strings.Cut(term, "-"); ok {
		from, errLo := strconv.Atoi(strings.TrimSpace(lo))
		to := n - 1
		var errHi error
		if strings.TrimSpace(hi) != "" {
			to, errHi = strconv.Atoi(strings.TrimSpace(hi))
		}
		if errLo == nil && errHi == nil {
			if from < 0 || from >= n || to >= n {
				return nil, fmt.Errorf("%w: %q with %d columns", ErrOutOfRange, term, n)
			}
			if to < from {
				return nil, fmt.Errorf("column range %q is reversed", term)
			}
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out, nil
		}
	}

	for i, name := range names {
		if name == term {
			return []int{i}, nil
		}
	}
	for i, name := range names {
		if strings.EqualFold(name, term) {
			return []int{i}, nil
		}
	}
	return nil, fmt.Errorf("unknown column %q", term)
}

// Names returns the names of the selected columns.
func (s Selection) Names(all []string) []string {
	out := make([]string, len(s.Indices))
	for i, idx := range s.Indices {
		if idx < len(all) {
			out[i] = all[idx]
		}
	}
	return out
}
