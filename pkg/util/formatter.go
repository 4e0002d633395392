package util

import (
	"fmt"
	"math"
)

// FormatValueFactor prints a value with an SI prefix, e.g. "12.500 mA".
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3e %s", value, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatBias prints a contact bias with its sign, e.g. "+0.250 V".
func FormatBias(v float64) string {
	return fmt.Sprintf("%+.3f V", v)
}

// FormatColumn prints one table cell of fixed width.
func FormatColumn(value float64) string {
	if value == 0 || (math.Abs(value) >= 0.01 && math.Abs(value) < 1000) {
		return fmt.Sprintf("%12.5f", value) // "    0.12345"
	}
	return fmt.Sprintf("%12.4e", value) // "  1.2345e+17"
}

// FormatHeader pads a column name to the width of FormatColumn.
func FormatHeader(name string) string {
	if len(name) > 12 {
		name = name[:12]
	}
	return fmt.Sprintf("%12s", name)
}
