package accounting

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// ParseBonusRatio parses "new:held", e.g. "1:2" is one bonus share for every two held.
func ParseBonusRatio(s string) (model.Ratio, error) {
	a, b, err := splitRatio(s)
	if err != nil {
		return model.Ratio{}, err
	}
	return model.Ratio{Numerator: a, Denominator: b}, nil
}

// ParseSplitRatio parses "old:new", e.g. "1:2" is one share becoming two.
func ParseSplitRatio(s string) (model.Ratio, error) {
	a, b, err := splitRatio(s)
	if err != nil {
		return model.Ratio{}, err
	}
	return model.Ratio{Numerator: b, Denominator: a}, nil
}

func ValidateRatio(r model.Ratio) error {
	if r.Numerator <= 0 || r.Denominator <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRatio, r)
	}
	return nil
}

func splitRatio(s string) (int64, int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not in a:b form", ErrInvalidRatio, s)
	}

	a, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}
	b, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	if a <= 0 || b <= 0 {
		return 0, 0, fmt.Errorf("%w: %q must be positive", ErrInvalidRatio, s)
	}

	return a, b, nil
}

// scale returns floor(q*n/d) and the remainder (q*n) mod d.
func scale(q int64, r model.Ratio) (int64, int64, error) {
	if err := ValidateRatio(r); err != nil {
		return 0, 0, err
	}
	if q != 0 && r.Numerator > math.MaxInt64/q {
		return 0, 0, fmt.Errorf("%w: %d * %s overflows", ErrInvalidRatio, q, r)
	}
	p := q * r.Numerator
	return p / r.Denominator, p % r.Denominator, nil
}
