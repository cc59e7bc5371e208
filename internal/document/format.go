package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Percent formats a percentage value with two decimals, e.g. "4.25%".
// NaN and infinities render as "0.00%".
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", finite(v))
}

// Score formats a 0-1 score as a whole percentage, e.g. 0.87 -> "87%".
func Score(v float64) string {
	return fmt.Sprintf("%.0f%%", finite(v)*100)
}

// Decimal formats v with two decimals and no unit
func Decimal(v float64) string {
	return strconv.FormatFloat(finite(v), 'f', 2, 64)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Hours renders posting hours as "9:00, 18:00"
func Hours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%d:00", h)
	}
	return strings.Join(parts, ", ")
}

// Hashtag adds a leading "#" when missing
func Hashtag(tag string) string {
	if strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}

// Title upper-cases the first letter of s
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func longDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}

func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
