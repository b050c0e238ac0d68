package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits an Amount carries.
const Scale = 4

const unitsPerWhole = 10000

// ErrMalformed is returned when an amount string is not a valid fixed-point value.
var ErrMalformed = errors.New("amount improperly formatted")

// ErrOverflow is returned when a sum or difference does not fit in an Amount.
var ErrOverflow = errors.New("amount out of range")

// Amount is a count of 1/10000ths of a currency unit.
type Amount int64

// Parse decodes a non-negative decimal string with at most four fractional
// digits. "10", "10." and "10.0000" all decode to 100000.
func Parse(s string) (Amount, error) {
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && strings.Contains(frac, ".") {
		return 0, fmt.Errorf("parsing amount %q: %w", s, ErrMalformed)
	}
	if !isDigits(whole) || !isDigits(frac) || len(frac) > Scale {
		return 0, fmt.Errorf("parsing amount %q: %w", s, ErrMalformed)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, ErrMalformed)
	}

	var f int64
	if frac != "" {
		// Right-pad to four digits: ".5" is 5000 units, not 5.
		f, err = strconv.ParseInt(frac+strings.Repeat("0", Scale-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing amount %q: %w", s, ErrMalformed)
		}
	}

	if w > (math.MaxInt64-f)/unitsPerWhole {
		return 0, fmt.Errorf("parsing amount %q: %w", s, ErrMalformed)
	}
	return Amount(w*unitsPerWhole + f), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a+b, or ErrOverflow if the result does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, or ErrOverflow if the result does not fit.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, ErrOverflow
	}
	return diff, nil
}

// String formats the amount with exactly four fractional digits, e.g. "-1.2345".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Decimal returns the amount as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// isDigits reports whether s consists only of ASCII digits. The empty string
// is accepted; callers decide whether an empty part is allowed.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
