package stats

import (
	"math"
	"math/big"
)

// Sum accumulates float64 values exactly, keeping the running total as a list
// of non-overlapping partials (Shewchuk's algorithm). Value rounds the exact
// sum once, so the result does not depend on the order in which values were
// added or on how partial sums were merged.
//
// Finite inputs whose running total leaves the float64 range are moved into
// a wide big.Float, so an intermediate overflow never loses exactness; only
// a final sum beyond the float64 range rounds to ±Inf.
//
// Infinities and NaN are kept aside and summed directly; if any were seen,
// Value returns their sum.
type Sum struct {
	partials []float64
	spill    *big.Float
	special  float64
	inexact  bool
}

// spillPrec holds any sum of up to 2^64 float64 values exactly: 2098 bits
// span the exponent range, the rest absorb carries.
const spillPrec = 2200

// Add adds x to the sum.
func (s *Sum) Add(x float64) {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		s.special += x
		s.inexact = true
		return
	}
	i := 0
	for j, y := range s.partials {
		if math.Abs(x) < math.Abs(y) {
			x, y = y, x
		}
		hi := x + y
		if math.IsInf(hi, 0) {
			// partials[i:j+1] were folded into x and y already.
			rest := append(s.partials[:i], s.partials[j+1:]...)
			s.spillAll(rest, x, y)
			return
		}
		lo := y - (hi - x)
		if lo != 0 {
			s.partials[i] = lo
			i++
		}
		x = hi
	}
	s.partials = append(s.partials[:i], x)
}

// spillAll moves the given partials and values into the big.Float
// accumulator and empties the partials list.
func (s *Sum) spillAll(partials []float64, vs ...float64) {
	if s.spill == nil {
		s.spill = new(big.Float).SetPrec(spillPrec)
	}
	var f big.Float
	for _, v := range vs {
		s.spill.Add(s.spill, f.SetFloat64(v))
	}
	for _, p := range partials {
		s.spill.Add(s.spill, f.SetFloat64(p))
	}
	s.partials = s.partials[:0]
}

// Merge adds the exact contents of o to s. o is not modified.
func (s *Sum) Merge(o *Sum) {
	if o.inexact {
		s.special += o.special
		s.inexact = true
	}
	if o.spill != nil {
		if s.spill == nil {
			s.spill = new(big.Float).SetPrec(spillPrec)
		}
		s.spill.Add(s.spill, o.spill)
	}
	for _, p := range o.partials {
		s.Add(p)
	}
}

// Value returns the correctly rounded sum.
func (s *Sum) Value() float64 {
	if s.inexact {
		return s.special
	}
	if s.spill != nil {
		t := new(big.Float).SetPrec(spillPrec).Set(s.spill)
		var f big.Float
		for _, p := range s.partials {
			t.Add(t, f.SetFloat64(p))
		}
		v, _ := t.Float64()
		return v
	}
	n := len(s.partials)
	if n == 0 {
		return 0
	}
	n--
	hi := s.partials[n]
	lo := 0.0
	for n > 0 {
		x := hi
		n--
		y := s.partials[n]
		hi = x + y
		yr := hi - x
		lo = y - yr
		if lo != 0 {
			break
		}
	}
	// Round half to even across the remaining partials.
	if n > 0 && ((lo < 0 && s.partials[n-1] < 0) || (lo > 0 && s.partials[n-1] > 0)) {
		y := lo * 2
		x := hi + y
		if y == x-hi {
			hi = x
		}
	}
	return hi
}

// Clone returns an independent copy of s.
func (s *Sum) Clone() Sum {
	cp := Sum{
		partials: append([]float64(nil), s.partials...),
		special:  s.special,
		inexact:  s.inexact,
	}
	if s.spill != nil {
		cp.spill = new(big.Float).SetPrec(spillPrec).Set(s.spill)
	}
	return cp
}
