/*
seed.go - Demo dataset loader

PURPOSE:
  Populates the stores with a small, realistic dataset so the portal is
  usable immediately after startup: a few bills and payments, reward
  history, one past redemption, demo citizen accounts and the sample
  emergency contacts.

DESIGN:
  Everything is loaded through the public store operations, so seeded data
  obeys exactly the same rules as data created through the API.
*/
package api

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/civista/water-office/rewards"
)

// demoPassword satisfies the registration strength rules.
const demoPassword = "Citizen@123"

// SeedDemoData loads the demo dataset. Intended for development setups;
// gated by the seed_demo_data config flag.
func (h *Handler) SeedDemoData() error {
	now := time.Now()
	day := 24 * time.Hour

	// Demo accounts
	accounts := []struct {
		name, email, district, tehsil, block, houseNo string
	}{
		{"Demo Citizen", "user@example.com", "Raipur", "Raipur", "Block A", "12/4"},
		{"Anita Sahu", "citizen1@raipur.gov.in", "Raipur", "Abhanpur", "Block C", "88"},
		{"Mohan Dewangan", "citizen2@raipur.gov.in", "Raipur", "Arang", "Block B", "312"},
	}
	for _, a := range accounts {
		if _, err := h.Citizens.Register(a.name, a.email, demoPassword, a.district, a.tehsil, a.block, a.houseNo); err != nil {
			return fmt.Errorf("seed citizen %s: %w", a.email, err)
		}
	}

	// Bills: one upcoming and one settled for the demo citizen, plus one
	// current and one long-overdue bill for the other accounts.
	h.Billing.CreateBill("user@example.com", decimal.NewFromInt(1500),
		now.Add(10*day), "Monthly water bill - November 2025")

	paid := h.Billing.CreateBill("user@example.com", decimal.NewFromInt(1500),
		now.Add(-5*day), "Monthly water bill - October 2025")
	if _, err := h.Billing.ProcessPayment(paid.ID, decimal.NewFromInt(1500), "upi"); err != nil {
		return fmt.Errorf("seed payment: %w", err)
	}

	h.Billing.CreateBill("citizen1@raipur.gov.in", decimal.NewFromInt(2000),
		now.Add(5*day), "Monthly water bill - November 2025")
	h.Billing.CreateBill("citizen2@raipur.gov.in", decimal.NewFromInt(1200),
		now.Add(-15*day), "Monthly water bill - October 2025")

	// Bring cached supply statuses in line with the seeded due dates.
	h.Billing.RefreshSupplyStatuses()

	// Reward history
	h.Rewards.AddRewardOn("user@example.com", rewards.CategoryOnTimePayment, 50,
		"November 2025 bill paid on time", paid.ID, now.Add(-2*day))
	h.Rewards.AddRewardOn("user@example.com", rewards.CategoryLeakReport, 100,
		"Reported pipe leak at Street 12", "sensor-2", now.Add(-5*day))
	h.Rewards.AddRewardOn("user@example.com", rewards.CategoryWaterSavings, 75,
		"Achieved 15% water savings this month", "", now.Add(-7*day))
	h.Rewards.AddRewardOn("citizen1@raipur.gov.in", rewards.CategoryOnTimePayment, 50,
		"October 2025 bill paid on time", "", now.Add(-10*day))

	// One past redemption for the demo citizen
	if _, err := h.Rewards.RedeemPoints("user@example.com", rewards.RedemptionWaterTaxDiscount, 200); err != nil {
		return fmt.Errorf("seed redemption: %w", err)
	}

	// Emergency contacts
	if err := h.Directory.SeedSampleContacts(); err != nil {
		return fmt.Errorf("seed contacts: %w", err)
	}

	log.Info().Msg("demo data loaded")
	return nil
}
