/*
rules.go - Tier table, point values, and redemption rules

The tier ranges are contiguous and non-overlapping and partition [0, inf):
Bronze 0-499, Silver 500-999, Gold 1000-2499, Platinum 2500+. The category
point values and the redemption catalog are lookup tables for collaborators
to consult before calling the ledger; the ledger itself never verifies that
a submitted point value matches its category.
*/
package rewards

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIER TABLE
// =============================================================================

var tiers = []Tier{
	{
		Name:               "Bronze",
		MinPoints:          0,
		MaxPoints:          499,
		Benefits:           []string{"Basic discount on water tax", "Monthly email newsletter"},
		DiscountPercentage: 2.0,
	},
	{
		Name:               "Silver",
		MinPoints:          500,
		MaxPoints:          999,
		Benefits:           []string{"5% water tax discount", "Priority complaint handling", "Free leak inspection"},
		DiscountPercentage: 5.0,
	},
	{
		Name:               "Gold",
		MinPoints:          1000,
		MaxPoints:          2499,
		Benefits:           []string{"10% water tax discount", "VIP support", "Free maintenance service monthly", "Exclusive coupons"},
		DiscountPercentage: 10.0,
	},
	{
		Name:               "Platinum",
		MinPoints:          2500,
		MaxPoints:          math.MaxInt,
		Benefits:           []string{"15% water tax discount", "24/7 priority support", "Free plumber visits", "Monthly rewards bonus"},
		DiscountPercentage: 15.0,
	},
}

// Tiers returns the ordered tier table.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier whose inclusive range contains totalPoints. The
// table partitions the whole non-negative range, so the fallback to the top
// tier should be unreachable; it exists as a safe default.
func TierFor(totalPoints int) Tier {
	for _, tier := range tiers {
		if totalPoints >= tier.MinPoints && totalPoints <= tier.MaxPoints {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}

// DiscountFor returns the discount percentage of the citizen's tier.
func DiscountFor(totalPoints int) float64 {
	return TierFor(totalPoints).DiscountPercentage
}

// =============================================================================
// POINT VALUE TABLES
// =============================================================================

// CategoryPoints is the canonical point value per reward category.
// Collaborators consult it to pre-populate suggested point values; AddReward
// accepts whatever the caller supplies.
var CategoryPoints = map[Category]int{
	CategoryOnTimePayment: 50,
	CategoryLeakReport:    100,
	CategoryWaterSavings:  75,
	CategoryReferral:      150,
	CategoryParticipation: 25,
}

// PointsForCategory returns the canonical value for a category, 0 if unknown.
func PointsForCategory(c Category) int {
	return CategoryPoints[c]
}

// RedemptionCatalog lists the redeemable offers and their point costs.
var RedemptionCatalog = map[string]int{
	"water_tax_discount_100": 200, // ₹100 discount for 200 points
	"water_tax_discount_250": 500,
	"water_tax_discount_500": 1000,
	"rmc_coupon_500":         300,
	"rmc_coupon_1000":        600,
	"maintenance_voucher":    400,
	"priority_service":       150,
}

// =============================================================================
// REDEMPTION RULES
// =============================================================================

// pointRate is the fixed points-to-currency conversion: 1 point = ₹0.5.
var pointRate = decimal.RequireFromString("0.5")

// PointsToCurrency converts a point count to its currency value.
func PointsToCurrency(points int) decimal.Decimal {
	return decimal.NewFromInt(int64(points)).Mul(pointRate)
}

// ValidateRedemption checks whether a redemption is possible. Returns
// (false, reason) for non-positive point amounts or insufficient points.
func ValidateRedemption(availablePoints, pointsNeeded int) (bool, string) {
	if pointsNeeded <= 0 {
		return false, "Invalid points amount"
	}
	if availablePoints < pointsNeeded {
		return false, fmt.Sprintf("Insufficient points. You have %d but need %d", availablePoints, pointsNeeded)
	}
	return true, "Redemption valid"
}
