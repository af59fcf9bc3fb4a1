package utils

import (
	"fmt"
	"strconv"
	"strings"
)

type durationUnit struct {
	singular string
	plural   string
	seconds  int64
}

// Largest unit first; FormatDuration relies on this order.
var durationUnits = []durationUnit{
	{"day", "days", 24 * 60 * 60},
	{"hour", "hours", 60 * 60},
	{"minute", "minutes", 60},
	{"second", "seconds", 1},
}

// FormatDuration renders a seconds count as a comma-separated phrase of
// non-zero units, e.g. 258732 -> "2 days, 23 hours, 52 minutes, 12 seconds".
// Zero renders as the empty string; negative input is treated as zero.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return ""
	}

	parts := make([]string, 0, len(durationUnits))
	remaining := seconds
	for _, unit := range durationUnits {
		value := remaining / unit.seconds
		remaining %= unit.seconds
		if value == 0 {
			continue
		}
		name := unit.plural
		if value == 1 {
			name = unit.singular
		}
		parts = append(parts, fmt.Sprintf("%d %s", value, name))
	}

	return strings.Join(parts, ", ")
}

// ParseDuration sums the unit phrases produced by FormatDuration back into
// seconds. The empty string parses as zero.
func ParseDuration(phrase string) (int64, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return 0, nil
	}

	var total int64
	for _, part := range strings.Split(phrase, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return 0, fmt.Errorf("invalid duration component %q", strings.TrimSpace(part))
		}

		value, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", fields[0], err)
		}
		if value < 0 {
			return 0, fmt.Errorf("negative duration value %d", value)
		}

		multiplier, ok := unitMultiplier(fields[1])
		if !ok {
			return 0, fmt.Errorf("unknown duration unit %q", fields[1])
		}
		total += value * multiplier
	}

	return total, nil
}

func unitMultiplier(name string) (int64, bool) {
	name = strings.ToLower(name)
	for _, unit := range durationUnits {
		if name == unit.singular || name == unit.plural {
			return unit.seconds, true
		}
	}
	return 0, false
}
