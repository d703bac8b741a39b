package stats

import (
	"math"
	"strconv"

	"github.com/DataDog/sketches-go/ddsketch"
	mapset "github.com/deckarep/golang-set/v2"
)

// medianAccuracy is the relative accuracy of the optional median sketch.
const medianAccuracy = 0.01

// Column holds the running statistics of one selected column.
//
// A Column is owned by exactly one goroutine at a time: a worker while it
// fills a chunk-local set, then the reducer once the set has been handed over.
type Column struct {
	Index int
	Name  string
	Type  ColumnType

	min, max       float64
	minStr, maxStr string
	total          Sum
	nulls          int64
	unique         mapset.Set[string]
	median         *ddsketch.DDSketch

	finalized   bool
	uniqueCount int
	mean        float64
}

// NewColumn returns an empty accumulator for the column at index.
func NewColumn(index int, name string, t ColumnType) *Column {
	return &Column{
		Index: index,
		Name:  name,
		Type:  t,
		min:   math.Inf(1),
		max:   math.Inf(-1),
	}
}

func (c *Column) enableMedian() {
	if c.median != nil {
		return
	}
	// NewDefaultDDSketch only fails for an accuracy outside (0, 1).
	sk, err := ddsketch.NewDefaultDDSketch(medianAccuracy)
	if err == nil {
		c.median = sk
	}
}

// Parse folds one raw field value into the column.
//
// Null markers only bump the null count. Otherwise the value is dispatched on
// the current type; a value that does not fit widens the column
// (Int to Float to String) instead of failing. A column still typed Null
// (nothing but nulls in the inference sample) takes the type of its first
// non-null value.
func (c *Column) Parse(v string) {
	if IsNull(v) {
		c.nulls++
		return
	}
	if c.Type == Null {
		c.Type = classify(v, Null)
	}

	switch c.Type {
	case Int:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.observe(float64(n))
			break
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Type = Float
			c.observe(f)
			break
		}
		c.Type = String
		c.observeString(v)
	case Float:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.observe(f)
			break
		}
		c.Type = String
		c.observeString(v)
	case String:
		c.observeString(v)
	}

	// Every non-null value enters the unique set whatever the current type:
	// a chunk still typed Float may merge into a column that ends as String.
	if c.unique == nil {
		c.unique = mapset.NewThreadUnsafeSet[string]()
	}
	if !c.unique.Contains(v) {
		c.unique.Add(v)
	}
}

func (c *Column) observe(f float64) {
	if f < c.min {
		c.min = f
	}
	if f > c.max {
		c.max = f
	}
	c.total.Add(f)
	if c.median != nil {
		// Add rejects NaN and values beyond the sketch range; those are
		// simply not part of the estimate.
		_ = c.median.Add(f)
	}
}

func (c *Column) observeString(v string) {
	if v == "" {
		return
	}
	if c.minStr == "" || v < c.minStr {
		c.minStr = v
	}
	if v > c.maxStr {
		c.maxStr = v
	}
}

// merge folds o into c. o must have the same layout and must not be used
// afterwards: its unique set may be adopted by c.
func (c *Column) merge(o *Column) {
	c.Type = Widen(c.Type, o.Type)
	if o.min < c.min {
		c.min = o.min
	}
	if o.max > c.max {
		c.max = o.max
	}
	c.observeString(o.minStr)
	c.observeString(o.maxStr)
	c.nulls += o.nulls
	c.total.Merge(&o.total)

	switch {
	case o.unique == nil:
	case c.unique == nil:
		c.unique = o.unique
	default:
		small, big := o.unique, c.unique
		if small.Cardinality() > big.Cardinality() {
			small, big = big, small
		}
		small.Each(func(v string) bool {
			big.Add(v)
			return false
		})
		c.unique = big
	}
	o.unique = nil

	if o.median != nil {
		if c.median == nil {
			c.median = o.median.Copy()
		} else {
			_ = c.median.MergeWith(o.median)
		}
	}
}

// clone returns a deep copy of c.
func (c *Column) clone() *Column {
	cp := *c
	cp.total = c.total.Clone()
	if c.unique != nil {
		cp.unique = c.unique.Clone()
	}
	if c.median != nil {
		cp.median = c.median.Copy()
	}
	return &cp
}

// finalize computes the unique cardinality and the mean given the number of
// rows the owning set accepted. The unique set is released afterwards.
func (c *Column) finalize(rows int64) {
	if c.finalized {
		return
	}
	c.finalized = true

	switch c.Type {
	case Float:
		c.uniqueCount = 0
	case String:
		// Values seen while the column was still numeric only reached the
		// unique set; fold them in so min/max strings cover every value.
		if c.unique != nil {
			c.unique.Each(func(v string) bool {
				c.observeString(v)
				return false
			})
		}
		fallthrough
	default:
		if c.unique != nil {
			c.uniqueCount = c.unique.Cardinality()
		}
	}
	c.unique = nil

	if c.Type.Numeric() {
		if d := rows - c.nulls; d > 0 {
			c.mean = c.total.Value() / float64(d)
		}
	}
}

// Median returns the approximate median of the numeric values, if the column
// tracks one and has seen any.
func (c *Column) Median() (float64, bool) {
	if c.median == nil || c.median.IsEmpty() {
		return 0, false
	}
	v, err := c.median.GetValueAtQuantile(0.5)
	if err != nil {
		return 0, false
	}
	return v, true
}
