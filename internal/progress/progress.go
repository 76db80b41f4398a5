// Package progress maps reading positions to a normalized percentage.
// Pure functions only, so the persistence layer can call them without
// side effects.
package progress

import "math"

// Percentage returns round(current/total*100), or 0 when total is not
// positive. Callers clamp current to [1, total] before invocation; the
// model itself does not clamp.
func Percentage(current, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}

// Clamp bounds a requested position to [1, total], the form Percentage
// expects. A non-positive total yields 0.
func Clamp(current, total int) int {
	if total <= 0 {
		return 0
	}
	if current < 1 {
		return 1
	}
	if current > total {
		return total
	}
	return current
}
