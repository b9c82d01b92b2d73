package domain

import "github.com/shopspring/decimal"

// CoalesceDecimal returns the first non-nil amount, or zero.
func CoalesceDecimal(ptrs ...*decimal.Decimal) decimal.Decimal {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return decimal.Zero
}

// IntFromPtrWithDefault returns the first non-nil *int value, or the fallback.
func IntFromPtrWithDefault(fallback int, ptrs ...*int) int {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
