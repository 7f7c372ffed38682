/*
Package billing owns the billing ledger: bill and payment records, the
per-citizen bill index, and the rules deriving a bill's supply status from
its payment state and due date.

KEY CONCEPTS:
  - Bill: a charge against a citizen. Created once; only its payment status
    and cached supply status ever change afterwards.
  - Payment: an append-only settlement record referencing exactly one bill.
  - SupplyStatus: derived, never set by callers. Paid bills are active;
    pending bills degrade from active to limited to suspended as they age
    past their due date.

The ledger is in-memory and single-process. One RWMutex guards all
mutations; read operations return defensive copies.

SEE ALSO:
  - rules.go: status derivation
  - ledger.go: record store and transactions
  - invoice.go: text invoice rendering
*/
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// PaymentStatus is the settlement state of a bill.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// ParsePaymentStatus converts external string input into a PaymentStatus.
// Conversion happens once, at the edge; internal code uses the typed values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentOverdue:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// SupplyStatus is the derived water-supply state of a bill or citizen.
type SupplyStatus string

const (
	SupplyActive    SupplyStatus = "active"
	SupplyLimited   SupplyStatus = "limited"
	SupplySuspended SupplyStatus = "suspended"
)

// =============================================================================
// RECORDS
// =============================================================================

// Bill is a charge against a citizen. Amount is a positive currency value;
// callers validate positivity before reaching the ledger.
type Bill struct {
	ID            string
	CitizenEmail  string
	Amount        decimal.Decimal
	DueDate       time.Time // calendar date, midnight UTC
	CreatedDate   time.Time
	Description   string
	PaymentStatus PaymentStatus
	SupplyStatus  SupplyStatus // cached; re-derived on payment and refresh
}

// Payment records one settlement against a bill. Multiple payments per bill
// are allowed; the first one flips the bill to paid and later ones are
// recorded without changing status again.
type Payment struct {
	ID              string
	BillID          string
	Amount          decimal.Decimal
	PaidDate        time.Time
	Method          string
	ReferenceNumber string
}

// CitizenSummary aggregates a citizen's billing position. SupplyStatus and
// OverdueDays are recomputed live from pending bills on every call and
// reflect the worst (most overdue) pending bill.
type CitizenSummary struct {
	Bills        []Bill
	TotalPending decimal.Decimal
	SupplyStatus SupplyStatus
	OverdueDays  int
}

// Stats is the municipal billing overview across all citizens.
type Stats struct {
	TotalBills     int
	PaidBills      int
	PendingBills   int
	TotalAmount    decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalPending   decimal.Decimal
	CollectionRate float64 // percent of billed amount collected
}
