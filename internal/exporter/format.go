package exporter

import (
	"fmt"
)

// formatAmount formats a nullable yen amount for CSV output. A nil amount
// renders as the empty string, never as zero.
func formatAmount(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
