// Package amount converts between atomic units and their decimal display
// form ("1234.56" for 123456 units with two decimal places).
package amount

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tychecash/go-tyche/tyche"
)

// ErrInvalidAmount wraps every parse failure.
var ErrInvalidAmount = errors.New("invalid amount")

// Formatter formats and parses amounts with a fixed number of decimal places.
type Formatter struct {
	places int
}

// NewFormatter returns a formatter for the economy rules of a network.
func NewFormatter(rules tyche.EconomyRules) *Formatter {
	return WithDecimalPlaces(rules.DecimalPlaces)
}

// WithDecimalPlaces returns a formatter for the given number of places.
// Places above tyche.MaxDecimalPlaces panic: validated rules never carry them.
func WithDecimalPlaces(places uint) *Formatter {
	if places > tyche.MaxDecimalPlaces {
		panic(fmt.Sprintf("amount: %d decimal places exceed %d", places, tyche.MaxDecimalPlaces))
	}
	return &Formatter{places: int(places)}
}

// DecimalPlaces returns the number of fraction digits.
func (f *Formatter) DecimalPlaces() uint {
	return uint(f.places)
}

// Format renders amount with exactly DecimalPlaces fraction digits and at
// least one integer digit. With zero places no point is written.
func (f *Formatter) Format(amount uint64) string {
	s := strconv.FormatUint(amount, 10)
	if f.places == 0 {
		return s
	}
	if len(s) < f.places+1 {
		s = strings.Repeat("0", f.places+1-len(s)) + s
	}
	point := len(s) - f.places
	return s[:point] + "." + s[point:]
}

// FormatSigned is Format with a leading '-' for negative amounts.
func (f *Formatter) FormatSigned(amount int64) string {
	if amount < 0 {
		// -(amount+1)+1 stays representable for math.MinInt64.
		return "-" + f.Format(uint64(-(amount+1))+1)
	}
	return f.Format(uint64(amount))
}

// Parse reads a decimal amount. Surrounding whitespace is ignored, trailing
// zero fraction digits beyond DecimalPlaces are dropped, and any other
// excess precision is rejected.
func (f *Formatter) Parse(s string) (uint64, error) {
	digits := strings.TrimSpace(s)
	fraction := 0
	if point := strings.IndexByte(digits, '.'); point >= 0 {
		fraction = len(digits) - point - 1
		for fraction > f.places && digits[len(digits)-1] == '0' {
			digits = digits[:len(digits)-1]
			fraction--
		}
		if fraction > f.places {
			return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, f.places)
		}
		digits = digits[:point] + digits[point+1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: %q is empty", ErrInvalidAmount, s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
		}
	}
	digits += strings.Repeat("0", f.places-fraction)

	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseSigned accepts an optional leading '-' before an amount Parse accepts.
func (f *Formatter) ParseSigned(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	negative := strings.HasPrefix(trimmed, "-")
	if negative {
		trimmed = trimmed[1:]
	}
	v, err := f.Parse(trimmed)
	if err != nil {
		return 0, err
	}
	const limit = uint64(1) << 63
	switch {
	case negative && v <= limit:
		return -int64(v-1) - 1, nil
	case !negative && v < limit:
		return int64(v), nil
	}
	return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
}
