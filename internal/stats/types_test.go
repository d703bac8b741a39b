package stats

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNull(t *testing.T) {
	for _, v := range []string{"", "NA", "Na", "na", "NULL", "Null", "null"} {
		assert.True(t, IsNull(v), "%q", v)
	}
	for _, v := range []string{" ", "nA", "NaN", "nil", "none", "0", "NuLL"} {
		assert.False(t, IsNull(v), "%q", v)
	}
}

func TestObserve(t *testing.T) {
	cases := []struct {
		from ColumnType
		v    string
		want ColumnType
	}{
		{Null, "", Null},
		{Null, "NA", Null},
		{Null, "12", Int},
		{Null, "-9223372036854775808", Int},
		{Null, "9223372036854775808", Float},
		{Null, "1.5", Float},
		{Null, "1e3", Float},
		{Null, "abc", String},
		{Int, "7", Int},
		{Int, "7.25", Float},
		{Int, "x", String},
		{Float, "3", Float},
		{Float, "x", String},
		{String, "1", String},
		{Int, "null", Int},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.Observe(tc.v), "%s.Observe(%q)", tc.from, tc.v)
	}
}

func TestParseColumnType(t *testing.T) {
	for in, want := range map[string]ColumnType{
		"int": Int, "INTEGER": Int, "float": Float, "double": Float,
		"string": String, " Text ": String, "null": Null,
	} {
		got, err := ParseColumnType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColumnType("date")
	assert.Error(t, err)

	var ct ColumnType
	require.NoError(t, ct.UnmarshalText([]byte("float")))
	assert.Equal(t, Float, ct)
	b, err := String.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "string", string(b))
}

// The type after record N+1 is never narrower than after record N.
func TestWideningIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	pool := []string{"", "NA", "1", "-3", "2.5", "1e9", "x", "null", "42", "0.0"}

	for trial := 0; trial < 200; trial++ {
		c := NewColumn(0, "c", Null)
		inferred := Null
		for i := 0; i < 50; i++ {
			v := pool[r.IntN(len(pool))]

			before := c.Type
			c.Parse(v)
			assert.GreaterOrEqual(t, c.Type, before)

			prev := inferred
			inferred = inferred.Observe(v)
			assert.GreaterOrEqual(t, inferred, prev)
		}
	}
}

func TestInfer(t *testing.T) {
	lines := []string{
		"1,a,,2.5",
		"2,b,NA,3",
		"short",
		"3,c,null,x",
	}
	got := Infer(lines, []int{0, 1, 2, 3}, ',', '"', 0)
	assert.Equal(t, []ColumnType{Int, String, Null, String}, got)

	// Only the first two lines are sampled.
	got = Infer(lines, []int{3}, ',', '"', 2)
	assert.Equal(t, []ColumnType{Float}, got)

	// Short rows are ignored rather than read as nulls.
	got = Infer([]string{"1", "2,x"}, []int{1}, ',', '"', 0)
	assert.Equal(t, []ColumnType{String}, got)
}

func TestApplyHints(t *testing.T) {
	types := []ColumnType{Int, Int, Float}
	ApplyHints(types, []int{0, 4, 7}, map[int]ColumnType{4: String, 9: Float})
	assert.Equal(t, []ColumnType{Int, String, Float}, types)
}
