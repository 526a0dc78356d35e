// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatMoney formats an amount as dollars with thousands separators.
func FormatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := groupThousands(parts[0])

	result := "$" + intPart + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a rate (0.05) as a percentage (5.00%).
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// FormatSignedPercent formats a percentage change with an explicit sign.
func FormatSignedPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	negative := n < 0
	if negative {
		n = -n
	}
	s := groupThousands(fmt.Sprintf("%d", n))
	if negative {
		return "-" + s
	}
	return s
}
