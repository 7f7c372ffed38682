/*
rules.go - Pure supply-status derivation rules

The rules are deliberately time-relative: "today" is taken at evaluation
time, not frozen at bill creation, so a pending bill's derived status can
change without any write to the record.

  paid                      -> active
  pending, 0 days overdue   -> active
  pending, 1..7 days        -> limited
  pending, > 7 days         -> suspended

A due date in the future clamps to 0 days overdue.
*/
package billing

import "time"

// graceDays is the limited-supply window after the due date.
const graceDays = 7

// Date truncates t to a calendar date at midnight UTC. Due dates and paid
// dates are always stored in this form.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOverdue returns the calendar-day count past the due date, clamped at
// zero for bills not yet due.
func DaysOverdue(dueDate, now time.Time) int {
	days := int(Date(now).Sub(Date(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// SupplyStatusFor derives the supply status of a single bill from its
// payment status and due date, evaluated at now.
func SupplyStatusFor(ps PaymentStatus, dueDate, now time.Time) SupplyStatus {
	if ps == PaymentPaid {
		return SupplyActive
	}

	switch days := DaysOverdue(dueDate, now); {
	case days == 0:
		return SupplyActive
	case days <= graceDays:
		return SupplyLimited
	default:
		return SupplySuspended
	}
}

// aggregateSupplyStatus maps a citizen's worst overdue-day count onto a
// citizen-level status. Used by CitizenSummary.
func aggregateSupplyStatus(maxOverdueDays int) SupplyStatus {
	switch {
	case maxOverdueDays > graceDays:
		return SupplySuspended
	case maxOverdueDays > 0:
		return SupplyLimited
	default:
		return SupplyActive
	}
}
