package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// NextDueDate advances a due date by one calendar month.
// Months of differing lengths follow time.AddDate semantics (Jan 31 + 1
// month normalizes to Mar 2/3), which matches how the back office has
// always scheduled dues.
func NextDueDate(from time.Time) time.Time {
	return from.AddDate(0, 1, 0)
}

// AdHocInstallment splits a total across `months` equal installments,
// rounding up to whole currency units so the schedule never undershoots
// the total.
func AdHocInstallment(total decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return total
	}
	return total.Div(decimal.NewFromInt(int64(months))).Ceil()
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// IsPastDue reports whether a due date has elapsed as of `asOf`.
func IsPastDue(dueDate time.Time, asOf time.Time) bool {
	return asOf.After(dueDate)
}
