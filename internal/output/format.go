package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatRate formats a per-100k rate
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatMonth formats a reporting month as "Jan 2006"
func FormatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}

// FormatCount formats an integer with thousands separators
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
