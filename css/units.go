package css

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultFontSize is the initial font size in points.
const DefaultFontSize = 12.0

// Length units relative to point.
var absoluteUnits = map[string]float64{
	"pt": 1,
	"px": 0.75,
	"in": 72,
	"cm": 72 / 2.54,
	"mm": 72 / 25.4,
	"q":  72 / 101.6,
	"pc": 12,
}

// SplitDimension splits numeric value into number and lower-cased unit.
func SplitDimension(s string) (float64, string, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		// exponent, but not "em"/"ex" unit
		if (c == 'e' || c == 'E') && end > 0 && end+1 < len(s) && (s[end+1] >= '0' && s[end+1] <= '9' || s[end+1] == '-' || s[end+1] == '+') {
			end += 2
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.ToLower(s[end:]), true
}

// IsNumber reports whether value is unitless number.
func IsNumber(s string) bool {
	_, unit, ok := SplitDimension(s)
	return ok && unit == ""
}

// IsPercentage reports whether value is a percentage.
func IsPercentage(s string) bool {
	_, unit, ok := SplitDimension(s)
	return ok && unit == "%"
}

// IsLength reports whether value is length with known unit or zero.
func IsLength(s string) bool {
	v, unit, ok := SplitDimension(s)
	if !ok {
		return false
	}
	if unit == "" {
		return v == 0
	}
	if _, ok := absoluteUnits[unit]; ok {
		return true
	}
	switch unit {
	case "em", "rem", "ex", "ch":
		return true
	}
	return false
}

// ParseAbsoluteLength converts length to points, font relative units are
// computed against DefaultFontSize.
func ParseAbsoluteLength(s string, log *zap.Logger) (float64, bool) {
	return ParseLength(s, DefaultFontSize, DefaultFontSize, log)
}

// ParseLength converts length to points. Font relative units use em and rem
// font sizes in points. Unknown unit is reported and its numeric part used as
// points.
func ParseLength(s string, em, rem float64, log *zap.Logger) (float64, bool) {
	v, unit, ok := SplitDimension(s)
	if !ok {
		return 0, false
	}
	if k, ok := absoluteUnits[unit]; ok {
		return v * k, true
	}
	switch unit {
	case "":
		// unitless lengths are points
		return v, true
	case "em":
		return v * em, true
	case "rem":
		return v * rem, true
	case "ex", "ch":
		return v * em / 2, true
	case "%":
		return 0, false
	}
	if log != nil {
		log.Warn("Unknown absolute length unit, using number as is", zap.String("value", s), zap.String("unit", unit))
	}
	return v, true
}

// ParseLengthOrPercent converts length or percentage of base to points.
func ParseLengthOrPercent(s string, base, em, rem float64, log *zap.Logger) (float64, bool) {
	if v, unit, ok := SplitDimension(s); ok && unit == "%" {
		return v * base / 100, true
	}
	return ParseLength(s, em, rem, log)
}

// FormatPoints renders points value the way computed styles keep it.
func FormatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}
