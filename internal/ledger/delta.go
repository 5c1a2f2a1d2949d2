package ledger

import (
	"math"
	"strconv"
	"strings"
)

// ParseDelta parses a submitted score increment. It accepts a base-10 integer,
// optionally quoted, and rejects negative values.
func ParseDelta(raw string) (int64, error) {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	delta, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidDelta
	}
	if err := ValidateDelta(delta); err != nil {
		return 0, err
	}
	return delta, nil
}

func ValidateDelta(delta int64) error {
	if delta < 0 {
		return ErrInvalidDelta
	}
	return nil
}

func addScore(latest, delta int64) (int64, error) {
	if delta > math.MaxInt64-latest {
		return 0, ErrScoreOverflow
	}
	return latest + delta, nil
}
