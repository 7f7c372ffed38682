/*
Package rewards owns the loyalty-points ledger: earned rewards, point
redemptions, and the tier derived from a citizen's accumulated points.

KEY CONCEPTS:
  - Reward: points earned for a civic action (paying on time, reporting a
    leak, saving water...). Immutable after creation.
  - Redemption: points spent on a catalog offer. Append-only.
  - Tier: a named band over total points (Bronze through Platinum), always
    recomputed from the lifetime total, never persisted per citizen.

POINT ACCOUNTING:
  TotalPoints is the lifetime-earned total. Redemptions do NOT subtract from
  it, and RedeemPoints validates against that same lifetime total. This
  mirrors the behavior the product shipped with; callers wanting a true
  balance compute TotalPoints - PointsRedeemed themselves.

SEE ALSO:
  - rules.go: tier table, category point values, redemption catalog
  - ledger.go: record store and transactions
*/
package rewards

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category is an enumerated kind of earnable reward.
type Category string

const (
	CategoryOnTimePayment Category = "on_time_payment"
	CategoryLeakReport    Category = "leak_report"
	CategoryWaterSavings  Category = "water_savings"
	CategoryReferral      Category = "referral"
	CategoryParticipation Category = "participation"
)

// ParseCategory converts external string input into a Category. Conversion
// happens once, at the edge.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryOnTimePayment, CategoryLeakReport, CategoryWaterSavings,
		CategoryReferral, CategoryParticipation:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown reward category %q", s)
}

// RedemptionKind is an enumerated kind of point redemption.
type RedemptionKind string

const (
	RedemptionRMCCoupon          RedemptionKind = "rmc_coupon"
	RedemptionWaterTaxDiscount   RedemptionKind = "water_tax_discount"
	RedemptionMaintenanceVoucher RedemptionKind = "maintenance_voucher"
	RedemptionPriorityService    RedemptionKind = "priority_service"
)

// ParseRedemptionKind converts external string input into a RedemptionKind.
func ParseRedemptionKind(s string) (RedemptionKind, error) {
	switch RedemptionKind(s) {
	case RedemptionRMCCoupon, RedemptionWaterTaxDiscount,
		RedemptionMaintenanceVoucher, RedemptionPriorityService:
		return RedemptionKind(s), nil
	}
	return "", fmt.Errorf("unknown redemption kind %q", s)
}

// =============================================================================
// RECORDS
// =============================================================================

// Reward is an earned-points record. RelatedID optionally correlates the
// reward with another entity (a bill, an incident) by string ID only; the
// reference is never resolved or enforced here.
type Reward struct {
	ID           string
	CitizenEmail string
	Category     Category
	Points       int
	Description  string
	EarnedDate   time.Time
	RelatedID    string
}

// Redemption is a spent-points record.
type Redemption struct {
	ID           string
	CitizenEmail string
	Kind         RedemptionKind
	PointsUsed   int
	RedeemedDate time.Time
	Status       string // defaults to "completed"
	Value        decimal.Decimal
}

// Tier is a named points band with its perks. The table of tiers is static
// and ordered; see rules.go.
type Tier struct {
	Name               string
	MinPoints          int
	MaxPoints          int // inclusive; top tier is unbounded
	Benefits           []string
	DiscountPercentage float64
}

// CitizenSummary is a citizen's full reward position.
type CitizenSummary struct {
	TotalPoints       int
	CurrentTier       Tier
	RecentRewards     []Reward // at most 5, newest first
	RedemptionHistory []Redemption
	RewardsCount      int
	RedemptionsCount  int
}

// Stats aggregates the reward economy across the whole store.
type Stats struct {
	TotalPointsIssued   int
	TotalPointsRedeemed int
	UniqueParticipants  int
	Breakdown           map[Category]int // reward count per category
}
