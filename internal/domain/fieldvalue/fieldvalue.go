package fieldvalue

import (
	"math"
	"strconv"
	"strings"
)

// Int reads a numeric form value, falling back to 0 when it cannot be parsed.
// Decimal input is truncated.
func Int(raw string) int {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f := Float(s)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// Float reads a decimal form value, falling back to 0 when it cannot be
// parsed or is not finite.
func Float(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Bool reads a checkbox-style value. Anything other than a recognised true
// spelling is false.
func Bool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
