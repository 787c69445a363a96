package dashboard

import (
	"strconv"
	"strings"
)

// FormatCount renders an integer with "." as the thousands separator,
// the way the warehouse team reads counts: 4060 → "4.060",
// -751 → "-751", 1234567 → "1.234.567".
func FormatCount(n int) string {
	s := strconv.Itoa(n)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) > 3 {
		var b strings.Builder
		pre := len(s) % 3
		if pre > 0 {
			b.WriteString(s[:pre])
		}
		for i := pre; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}

	if neg {
		return "-" + s
	}
	return s
}
