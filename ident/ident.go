/*
Package ident mints the short, human-readable identifiers used across the
back office.

FORMATS:
  New("BILL")       BILL-9F3A1C07        prefix + 8 uppercase hex chars
  InvoiceNumber(t)  INV-20251113094210-4B9F   sortable timestamp + 4 hex chars
  CouponCode(t)     RMC-251113-A41C9D    date stamp + 6 hex chars

Identifiers are unique at single-process demo scale; the randomness comes
from UUIDv4 hex and is not a cryptographic guarantee.
*/
package ident

import (
	"fmt"
	"strings"

	"time"

	"github.com/google/uuid"
)

// New returns "{PREFIX}-{8 uppercase hex chars}".
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, hexChars(8))
}

// InvoiceNumber returns an invoice number with an embedded sortable
// timestamp: "INV-{yyyyMMddHHmmss}-{4 hex chars}".
func InvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102150405"), hexChars(4))
}

// CouponCode returns a redemption coupon code: "RMC-{yyMMdd}-{6 hex chars}".
func CouponCode(now time.Time) string {
	return fmt.Sprintf("RMC-%s-%s", now.Format("060102"), hexChars(6))
}

// hexChars returns n uppercase hex characters of UUIDv4 entropy (n <= 32).
func hexChars(n int) string {
	h := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(h[:n])
}
