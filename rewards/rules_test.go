package rewards_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civista/water-office/rewards"
)

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, "Bronze"},
		{499, "Bronze"},
		{500, "Silver"},
		{999, "Silver"},
		{1000, "Gold"},
		{2499, "Gold"},
		{2500, "Platinum"},
		{1_000_000, "Platinum"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rewards.TierFor(tc.points).Name, "points=%d", tc.points)
	}
}

func TestTiers_PartitionWithoutGaps(t *testing.T) {
	// The four ranges must partition [0, inf): contiguous, non-overlapping,
	// top tier unbounded.
	tiers := rewards.Tiers()
	require.NotEmpty(t, tiers)
	assert.Equal(t, 0, tiers[0].MinPoints)
	for i := 1; i < len(tiers); i++ {
		assert.Equal(t, tiers[i-1].MaxPoints+1, tiers[i].MinPoints,
			"gap or overlap between %s and %s", tiers[i-1].Name, tiers[i].Name)
	}
}

func TestTierFor_MonotonicallyNonDecreasing(t *testing.T) {
	tierRank := map[string]int{"Bronze": 0, "Silver": 1, "Gold": 2, "Platinum": 3}
	prev := 0
	for points := 0; points <= 3000; points += 25 {
		rank := tierRank[rewards.TierFor(points).Name]
		assert.GreaterOrEqual(t, rank, prev, "tier regressed at %d points", points)
		prev = rank
	}
}

func TestValidateRedemption(t *testing.T) {
	ok, msg := rewards.ValidateRedemption(500, 200)
	assert.True(t, ok)
	assert.Equal(t, "Redemption valid", msg)

	ok, msg = rewards.ValidateRedemption(500, 0)
	assert.False(t, ok)
	assert.Equal(t, "Invalid points amount", msg)

	ok, msg = rewards.ValidateRedemption(500, -10)
	assert.False(t, ok)
	assert.Equal(t, "Invalid points amount", msg)

	ok, msg = rewards.ValidateRedemption(100, 200)
	assert.False(t, ok)
	assert.Equal(t, "Insufficient points. You have 100 but need 200", msg)
}

func TestPointsToCurrency_FixedRate(t *testing.T) {
	assert.Equal(t, "100", rewards.PointsToCurrency(200).String())
	assert.Equal(t, "0.5", rewards.PointsToCurrency(1).String())
	assert.Equal(t, "37.5", rewards.PointsToCurrency(75).String())
	assert.True(t, rewards.PointsToCurrency(0).IsZero())
}

func TestCategoryPoints_Canonical(t *testing.T) {
	assert.Equal(t, 50, rewards.PointsForCategory(rewards.CategoryOnTimePayment))
	assert.Equal(t, 100, rewards.PointsForCategory(rewards.CategoryLeakReport))
	assert.Equal(t, 75, rewards.PointsForCategory(rewards.CategoryWaterSavings))
	assert.Equal(t, 150, rewards.PointsForCategory(rewards.CategoryReferral))
	assert.Equal(t, 25, rewards.PointsForCategory(rewards.CategoryParticipation))
	assert.Equal(t, 0, rewards.PointsForCategory(rewards.Category("unknown")))
}

func TestParseCategory(t *testing.T) {
	c, err := rewards.ParseCategory("leak_report")
	require.NoError(t, err)
	assert.Equal(t, rewards.CategoryLeakReport, c)

	_, err = rewards.ParseCategory("bribery")
	assert.Error(t, err)
}

func TestParseRedemptionKind(t *testing.T) {
	k, err := rewards.ParseRedemptionKind("water_tax_discount")
	require.NoError(t, err)
	assert.Equal(t, rewards.RedemptionWaterTaxDiscount, k)

	_, err = rewards.ParseRedemptionKind("cashout")
	assert.Error(t, err)
}
