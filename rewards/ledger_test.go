package rewards_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civista/water-office/rewards"
)

var today = time.Date(2025, time.November, 13, 10, 0, 0, 0, time.UTC)

func newTestLedger() *rewards.Ledger {
	return rewards.NewLedgerWithClock(func() time.Time { return today })
}

func TestAddReward_Record(t *testing.T) {
	ledger := newTestLedger()

	reward := ledger.AddReward("user@example.com", rewards.CategoryLeakReport, 100, "Reported pipe leak at Street 12", "INC-12345")

	assert.True(t, strings.HasPrefix(reward.ID, "RWD-"))
	assert.Equal(t, 100, reward.Points)
	assert.Equal(t, "INC-12345", reward.RelatedID)
	assert.Equal(t, time.Date(2025, time.November, 13, 0, 0, 0, 0, time.UTC), reward.EarnedDate)

	stored := ledger.RewardsForCitizen("user@example.com")
	require.Len(t, stored, 1)
	assert.Equal(t, reward, stored[0])
}

func TestTotalPoints_TierScenario(t *testing.T) {
	// Scenario from the product spec sheet: 50+100+75 points is Bronze,
	// 300 more crosses into Silver.
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryOnTimePayment, 50, "on time", "")
	ledger.AddReward("user@example.com", rewards.CategoryLeakReport, 100, "leak", "")
	ledger.AddReward("user@example.com", rewards.CategoryWaterSavings, 75, "savings", "")

	assert.Equal(t, 225, ledger.TotalPoints("user@example.com"))
	assert.Equal(t, "Bronze", rewards.TierFor(ledger.TotalPoints("user@example.com")).Name)

	ledger.AddReward("user@example.com", rewards.CategoryReferral, 300, "referrals", "")

	assert.Equal(t, 525, ledger.TotalPoints("user@example.com"))
	assert.Equal(t, "Silver", rewards.TierFor(ledger.TotalPoints("user@example.com")).Name)
}

func TestTotalPoints_LifetimeIgnoresRedemptions(t *testing.T) {
	// Preserved shipped behavior: TotalPoints is the lifetime-earned total.
	// Spending points does not reduce it, and the next redemption is still
	// validated against the full lifetime figure.
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryReferral, 300, "referral", "")

	_, err := ledger.RedeemPoints("user@example.com", rewards.RedemptionRMCCoupon, 300)
	require.NoError(t, err)

	assert.Equal(t, 300, ledger.TotalPoints("user@example.com"))

	// A second 300-point redemption succeeds even though every earned point
	// has already been spent.
	_, err = ledger.RedeemPoints("user@example.com", rewards.RedemptionRMCCoupon, 300)
	assert.NoError(t, err)
}

func TestPointsRedeemed_NetBalanceComputedByCaller(t *testing.T) {
	// The alternative interpretation, kept caller-side: a true balance is
	// TotalPoints - PointsRedeemed.
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryReferral, 300, "referral", "")
	_, err := ledger.RedeemPoints("user@example.com", rewards.RedemptionPriorityService, 150)
	require.NoError(t, err)
	_, err = ledger.RedeemPoints("user@example.com", rewards.RedemptionPriorityService, 100)
	require.NoError(t, err)

	assert.Equal(t, 250, ledger.PointsRedeemed("user@example.com"))
	assert.Equal(t, 50, ledger.TotalPoints("user@example.com")-ledger.PointsRedeemed("user@example.com"))
}

func TestRedeemPoints_Insufficient(t *testing.T) {
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryParticipation, 25, "survey", "")

	_, err := ledger.RedeemPoints("user@example.com", rewards.RedemptionRMCCoupon, 100)
	assert.ErrorIs(t, err, rewards.ErrInsufficientPoints)
	assert.Empty(t, ledger.RedemptionsForCitizen("user@example.com"), "no record on failure")
}

func TestRedeemPoints_Success(t *testing.T) {
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryReferral, 300, "referral", "")

	redemption, err := ledger.RedeemPoints("user@example.com", rewards.RedemptionWaterTaxDiscount, 200)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(redemption.ID, "RED-"))
	assert.Equal(t, 200, redemption.PointsUsed)
	assert.Equal(t, "completed", redemption.Status)
	assert.Equal(t, "100", redemption.Value.String(), "value is points * 0.5")

	history := ledger.RedemptionsForCitizen("user@example.com")
	require.Len(t, history, 1)
	assert.Equal(t, redemption, history[0])
}

func TestCitizenSummary_RecentRewardsCappedAndSorted(t *testing.T) {
	ledger := newTestLedger()
	for i := 0; i < 7; i++ {
		earned := today.AddDate(0, 0, -i)
		ledger.AddRewardOn("user@example.com", rewards.CategoryParticipation, 25, "survey", "", earned)
	}

	summary := ledger.CitizenSummary("user@example.com")

	assert.Equal(t, 175, summary.TotalPoints)
	assert.Equal(t, 7, summary.RewardsCount)
	require.Len(t, summary.RecentRewards, 5)
	for i := 1; i < len(summary.RecentRewards); i++ {
		assert.False(t, summary.RecentRewards[i].EarnedDate.After(summary.RecentRewards[i-1].EarnedDate),
			"recent rewards must be newest first")
	}
}

func TestCitizenSummary_TierFields(t *testing.T) {
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryReferral, 600, "big referral", "")

	summary := ledger.CitizenSummary("user@example.com")
	assert.Equal(t, "Silver", summary.CurrentTier.Name)
	assert.Equal(t, 5.0, summary.CurrentTier.DiscountPercentage)
	assert.NotEmpty(t, summary.CurrentTier.Benefits)
}

func TestCitizenSummary_EmptyCitizen(t *testing.T) {
	ledger := newTestLedger()
	summary := ledger.CitizenSummary("nobody@example.com")

	assert.Equal(t, 0, summary.TotalPoints)
	assert.Equal(t, "Bronze", summary.CurrentTier.Name)
	assert.Empty(t, summary.RecentRewards)
	assert.Empty(t, summary.RedemptionHistory)
}

func TestStats_Aggregates(t *testing.T) {
	ledger := newTestLedger()
	ledger.AddReward("a@example.com", rewards.CategoryOnTimePayment, 50, "", "")
	ledger.AddReward("a@example.com", rewards.CategoryLeakReport, 100, "", "")
	ledger.AddReward("b@example.com", rewards.CategoryOnTimePayment, 50, "", "")
	_, err := ledger.RedeemPoints("a@example.com", rewards.RedemptionPriorityService, 150)
	require.NoError(t, err)

	stats := ledger.Stats()
	assert.Equal(t, 200, stats.TotalPointsIssued)
	assert.Equal(t, 150, stats.TotalPointsRedeemed)
	assert.Equal(t, 2, stats.UniqueParticipants)
	assert.Equal(t, 2, stats.Breakdown[rewards.CategoryOnTimePayment])
	assert.Equal(t, 1, stats.Breakdown[rewards.CategoryLeakReport])
}

func TestRewardsForCitizen_ReturnsCopies(t *testing.T) {
	ledger := newTestLedger()
	ledger.AddReward("user@example.com", rewards.CategoryLeakReport, 100, "leak", "")

	list := ledger.RewardsForCitizen("user@example.com")
	require.Len(t, list, 1)
	list[0].Points = 9999

	assert.Equal(t, 100, ledger.TotalPoints("user@example.com"))
}
