/*
ledger.go - In-memory billing ledger

STATE:
  bills           bill ID -> Bill
  payments        payment ID -> Payment
  billsByCitizen  citizen email -> bill IDs, insertion order, append-only
  paymentsByBill  bill ID -> payment IDs, insertion order, append-only

Every mutating operation is a critical section: it performs a read-then-write
on a primary map and an index list, so the whole operation runs under the
write lock. Read operations take the read lock and return copies, never the
live index structures.

Nothing is deleted. The store is a grow-only log of bills and payments plus
the two mutable status fields on Bill.
*/
package billing

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civista/water-office/ident"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBillNotFound is returned when a referenced bill does not exist.
	ErrBillNotFound = errors.New("bill not found")

	// ErrPaymentNotFound is returned when a referenced payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the in-memory record store for bills and payments. Construct one
// at process startup and inject it into the request layer; there is no
// package-level instance.
type Ledger struct {
	mu             sync.RWMutex
	bills          map[string]*Bill
	payments       map[string]*Payment
	billsByCitizen map[string][]string
	paymentsByBill map[string][]string

	now func() time.Time
}

// NewLedger creates an empty billing ledger using the wall clock.
func NewLedger() *Ledger {
	return NewLedgerWithClock(time.Now)
}

// NewLedgerWithClock creates a ledger with an injected clock. Tests use this
// to pin "today" for the time-relative status rules.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	return &Ledger{
		bills:          make(map[string]*Bill),
		payments:       make(map[string]*Payment),
		billsByCitizen: make(map[string][]string),
		paymentsByBill: make(map[string][]string),
		now:            now,
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateBill creates a pending bill and appends it to the citizen's index.
// Amount must already be validated positive by the caller. The cached supply
// status starts optimistic (active) and is re-derived on payment or by the
// refresh pass, not here.
func (l *Ledger) CreateBill(citizenEmail string, amount decimal.Decimal, dueDate time.Time, description string) Bill {
	l.mu.Lock()
	defer l.mu.Unlock()

	bill := &Bill{
		ID:            ident.New("BILL"),
		CitizenEmail:  citizenEmail,
		Amount:        amount,
		DueDate:       Date(dueDate),
		CreatedDate:   Date(l.now()),
		Description:   description,
		PaymentStatus: PaymentPending,
		SupplyStatus:  SupplyActive,
	}
	l.bills[bill.ID] = bill
	l.billsByCitizen[citizenEmail] = append(l.billsByCitizen[citizenEmail], bill.ID)
	return *bill
}

// ProcessPayment settles a bill and records a Payment referencing it.
// Returns ErrBillNotFound if the bill does not exist; in that case no
// Payment record is created.
//
// The bill's payment status is set to paid and its supply status to active
// unconditionally, even when amount differs from the bill amount: a partial
// payment still fully settles the bill. Paying an already-paid bill is not
// rejected here; a second Payment is recorded and paid/active re-asserted.
// Callers wanting to forbid double payment must check the bill first.
func (l *Ledger) ProcessPayment(billID string, amount decimal.Decimal, method string) (Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bill, ok := l.bills[billID]
	if !ok {
		return Payment{}, ErrBillNotFound
	}

	bill.PaymentStatus = PaymentPaid
	bill.SupplyStatus = SupplyActive

	payment := &Payment{
		ID:              ident.New("PAY"),
		BillID:          billID,
		Amount:          amount,
		PaidDate:        Date(l.now()),
		Method:          method,
		ReferenceNumber: ident.New("PAY"),
	}
	l.payments[payment.ID] = payment
	l.paymentsByBill[billID] = append(l.paymentsByBill[billID], payment.ID)
	return *payment, nil
}

// RefreshSupplyStatuses re-derives the cached supply status of every pending
// bill from today's date. Returns the number of bills whose status changed.
// Paid bills are never touched, and payment status itself never changes here:
// summary aggregation filters on pending bills only, so flipping a bill to
// "overdue" would silently drop it from citizens' pending totals.
func (l *Ledger) RefreshSupplyStatuses() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	changed := 0
	for _, bill := range l.bills {
		if bill.PaymentStatus != PaymentPending {
			continue
		}
		if status := SupplyStatusFor(bill.PaymentStatus, bill.DueDate, now); status != bill.SupplyStatus {
			bill.SupplyStatus = status
			changed++
		}
	}
	return changed
}

// =============================================================================
// READS
// =============================================================================

// Bill returns the bill with the given ID.
func (l *Ledger) Bill(id string) (Bill, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bill, ok := l.bills[id]
	if !ok {
		return Bill{}, ErrBillNotFound
	}
	return *bill, nil
}

// Payment returns the payment with the given ID.
func (l *Ledger) Payment(id string) (Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	payment, ok := l.payments[id]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return *payment, nil
}

// AllBills returns every bill in the store.
func (l *Ledger) AllBills() []Bill {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bills := make([]Bill, 0, len(l.bills))
	for _, citizen := range sortedKeys(l.billsByCitizen) {
		for _, id := range l.billsByCitizen[citizen] {
			bills = append(bills, *l.bills[id])
		}
	}
	return bills
}

// BillsForCitizen returns the citizen's bills in creation order.
func (l *Ledger) BillsForCitizen(citizenEmail string) []Bill {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.billsForCitizenLocked(citizenEmail)
}

// PaymentsForBill returns every payment recorded against a bill, in
// creation order.
func (l *Ledger) PaymentsForBill(billID string) []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.paymentsByBill[billID]
	payments := make([]Payment, 0, len(ids))
	for _, id := range ids {
		payments = append(payments, *l.payments[id])
	}
	return payments
}

// CitizenSummary returns the citizen's bills plus aggregates over the
// pending ones. Overdue days are recomputed live per pending bill; the
// reported supply status reflects the worst bill, so a citizen with several
// pending bills is only as healthy as their most overdue one.
func (l *Ledger) CitizenSummary(citizenEmail string) CitizenSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now()
	bills := l.billsForCitizenLocked(citizenEmail)

	totalPending := decimal.Zero
	maxOverdue := 0
	for _, bill := range bills {
		if bill.PaymentStatus != PaymentPending {
			continue
		}
		totalPending = totalPending.Add(bill.Amount)
		if days := DaysOverdue(bill.DueDate, now); days > maxOverdue {
			maxOverdue = days
		}
	}

	return CitizenSummary{
		Bills:        bills,
		TotalPending: totalPending,
		SupplyStatus: aggregateSupplyStatus(maxOverdue),
		OverdueDays:  maxOverdue,
	}
}

// Stats aggregates the whole store for the municipal dashboard.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
	for _, bill := range l.bills {
		stats.TotalBills++
		stats.TotalAmount = stats.TotalAmount.Add(bill.Amount)
		if bill.PaymentStatus == PaymentPaid {
			stats.PaidBills++
			stats.TotalPaid = stats.TotalPaid.Add(bill.Amount)
		}
	}
	stats.PendingBills = stats.TotalBills - stats.PaidBills
	stats.TotalPending = stats.TotalAmount.Sub(stats.TotalPaid)
	if stats.TotalAmount.IsPositive() {
		rate, _ := stats.TotalPaid.Div(stats.TotalAmount).Mul(decimal.NewFromInt(100)).Float64()
		stats.CollectionRate = rate
	}
	return stats
}

func (l *Ledger) billsForCitizenLocked(citizenEmail string) []Bill {
	ids := l.billsByCitizen[citizenEmail]
	bills := make([]Bill, 0, len(ids))
	for _, id := range ids {
		bills = append(bills, *l.bills[id])
	}
	return bills
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
