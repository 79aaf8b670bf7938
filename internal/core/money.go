// Package core holds the pure domain types of the ledger bridge: integer-cent
// money, the trigger vocabulary, and the presentation formats used in
// administrator-facing messages.
package core

import (
	"fmt"
	"time"
)

// Money is a monetary amount in integer BYN cents. All ledger arithmetic is
// done in cents to avoid floating-point drift.
type Money struct {
	Cents int64
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Format renders the amount with two fractional digits and a comma decimal
// separator, e.g. 661 cents -> "6,61". This is the external text form only;
// the numeric domain stays in cents.
func (m Money) Format() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
}

// FormatStamp renders a message timestamp the way the administrator sees it:
// local wall clock first, then the date.
func FormatStamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04, 02.01.2006")
}

// FormatDate renders a bare local date for the daily report.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02.01.2006")
}
