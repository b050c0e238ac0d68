package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Amount
	}{
		{"10", 100000},
		{"10.", 100000},
		{"10.1", 101000},
		{"10.01", 100100},
		{"10.001", 100010},
		{"10.0001", 100001},
		{"0", 0},
		{"0.0000", 0},
		{"007.5", 75000},
		{"922337203685477.5807", 9223372036854775807},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.input)
	}
}

func TestParse_Malformed(t *testing.T) {
	badInputs := []string{
		"",
		".",
		".5",
		"10.00001",
		"1.2.3",
		"1..2",
		"-1.0",
		"+1.0",
		"1,5",
		"abc",
		"1.2a",
		" 1.0",
		"922337203685477.5808",
		"99999999999999999999",
	}
	for _, input := range badInputs {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrMalformed, "expected ErrMalformed for %q", input)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{0, "0.0000"},
		{100000, "10.0000"},
		{1, "0.0001"},
		{-12345, "-1.2345"},
		{-5, "-0.0005"},
		{-10000, "-1.0000"},
		{1234567890, "123456.7890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.amount.String(), "Amount(%d)", int64(tt.amount))
	}
}

func TestCanonicalForm(t *testing.T) {
	// Formatting a parsed value yields the 4-digit canonical form of the input.
	tests := []struct {
		input string
		want  string
	}{
		{"10.0", "10.0000"},
		{"10", "10.0000"},
		{"10.", "10.0000"},
		{"2.5", "2.5000"},
		{"0.1234", "0.1234"},
		{"1.05", "1.0500"},
		{"000.7", "0.7000"},
	}
	for _, tt := range tests {
		a, err := Parse(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.String(), "input %q", tt.input)

		again, err := Parse(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, again, "canonical form of %q must parse back to the same value", tt.input)
	}
}

func TestDecimal(t *testing.T) {
	a := MustParse("33.33")
	b := MustParse("0.67")
	sum := a.Decimal().Add(b.Decimal())
	assert.True(t, sum.Equal(decimal.NewFromInt(34)), "got %s", sum)
	assert.True(t, Amount(-12345).Decimal().Equal(decimal.RequireFromString("-1.2345")))
}

func TestArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 is the classic float64 failure.
	sum := MustParse("0.1") + MustParse("0.2")
	assert.Equal(t, MustParse("0.3"), sum)
	assert.Equal(t, "0.3000", sum.String())
}

func TestAddSub(t *testing.T) {
	sum, err := MustParse("1.5").Add(MustParse("0.0001"))
	require.NoError(t, err)
	assert.Equal(t, MustParse("1.5001"), sum)

	diff, err := MustParse("1").Sub(MustParse("2.5"))
	require.NoError(t, err)
	assert.Equal(t, -MustParse("1.5"), diff)

	diff, err = Amount(3).Sub(-2)
	require.NoError(t, err)
	assert.Equal(t, Amount(5), diff)
}

func TestAddSub_Overflow(t *testing.T) {
	largest := MustParse("922337203685477.5807")
	smallest := -largest - 1

	_, err := largest.Add(MustParse("0.0001"))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = smallest.Add(-1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = smallest.Sub(MustParse("0.0001"))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = largest.Sub(-1)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = Amount(0).Sub(smallest)
	assert.ErrorIs(t, err, ErrOverflow)

	edge, err := largest.Sub(largest)
	require.NoError(t, err)
	assert.Equal(t, Amount(0), edge)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("1.23456") })
}
