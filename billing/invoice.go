/*
invoice.go - Text invoice rendering

Pure formatting, no state. The invoice is a fixed-layout text artifact the
citizen portal offers for download after a successful payment.
*/
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice carries the fields rendered onto a payment invoice.
type Invoice struct {
	InvoiceNumber string
	CitizenEmail  string
	BillID        string
	Amount        decimal.Decimal
	PaidDate      time.Time
	PaymentMethod string
	GeneratedAt   time.Time
}

// Render returns the invoice as plain text.
func (inv Invoice) Render() string {
	date := inv.GeneratedAt.Format("02-01-2006")
	clock := inv.GeneratedAt.Format("15:04:05")

	var b strings.Builder
	rule := strings.Repeat("=", 47)

	b.WriteString("\n" + rule + "\n")
	b.WriteString("        WATER DISTRIBUTION MANAGEMENT\n")
	b.WriteString("                    INVOICE\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Invoice Number: %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Invoice Date: %s\n", date)
	fmt.Fprintf(&b, "Invoice Time: %s\n\n", clock)

	b.WriteString("------- CUSTOMER DETAILS -------\n")
	fmt.Fprintf(&b, "Email: %s\n", inv.CitizenEmail)
	fmt.Fprintf(&b, "Bill ID: %s\n\n", inv.BillID)

	b.WriteString("------- PAYMENT DETAILS -------\n")
	fmt.Fprintf(&b, "Amount Paid: ₹%s\n", inv.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Payment Date: %s\n", inv.PaidDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Payment Method: %s\n", inv.PaymentMethod)
	b.WriteString("Status: PAID\n\n")

	b.WriteString("------- TERMS & CONDITIONS -------\n")
	b.WriteString("1. This is a computer-generated invoice\n")
	b.WriteString("2. No signature required\n")
	b.WriteString("3. Keep this invoice for your records\n")
	b.WriteString("4. For queries, contact municipal office\n\n")

	fmt.Fprintf(&b, "Generated: %s %s\n", date, clock)
	b.WriteString(rule + "\n")
	return b.String()
}
