/*
ledger.go - In-memory rewards ledger

STATE:
  rewards              reward ID -> Reward
  redemptions          redemption ID -> Redemption
  rewardsByCitizen     citizen email -> reward IDs, insertion order
  redemptionsByCitizen citizen email -> redemption IDs, insertion order

Same discipline as the billing ledger: one RWMutex, mutations are critical
sections, reads hand out copies. Records are never deleted.
*/
package rewards

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/civista/water-office/ident"
)

// ErrInsufficientPoints is returned when a redemption asks for more points
// than the citizen's lifetime-earned total.
var ErrInsufficientPoints = errors.New("insufficient points")

// recentRewardLimit caps the recent-rewards slice in CitizenSummary.
const recentRewardLimit = 5

// Ledger is the in-memory record store for rewards and redemptions.
// Construct one at startup and inject it; there is no package-level instance.
type Ledger struct {
	mu                   sync.RWMutex
	rewards              map[string]*Reward
	redemptions          map[string]*Redemption
	rewardsByCitizen     map[string][]string
	redemptionsByCitizen map[string][]string

	now func() time.Time
}

// NewLedger creates an empty rewards ledger using the wall clock.
func NewLedger() *Ledger {
	return NewLedgerWithClock(time.Now)
}

// NewLedgerWithClock creates a ledger with an injected clock.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	return &Ledger{
		rewards:              make(map[string]*Reward),
		redemptions:          make(map[string]*Redemption),
		rewardsByCitizen:     make(map[string][]string),
		redemptionsByCitizen: make(map[string][]string),
		now:                  now,
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AddReward records earned points for a citizen. The point value is taken
// as supplied; checking it against CategoryPoints is a collaborator concern.
func (l *Ledger) AddReward(citizenEmail string, category Category, points int, description, relatedID string) Reward {
	l.mu.Lock()
	defer l.mu.Unlock()

	reward := &Reward{
		ID:           ident.New("RWD"),
		CitizenEmail: citizenEmail,
		Category:     category,
		Points:       points,
		Description:  description,
		EarnedDate:   dateOf(l.now()),
		RelatedID:    relatedID,
	}
	l.rewards[reward.ID] = reward
	l.rewardsByCitizen[citizenEmail] = append(l.rewardsByCitizen[citizenEmail], reward.ID)
	return *reward
}

// AddRewardOn records earned points with an explicit earned date. Used by
// demo seeding; regular accrual goes through AddReward.
func (l *Ledger) AddRewardOn(citizenEmail string, category Category, points int, description, relatedID string, earned time.Time) Reward {
	l.mu.Lock()
	defer l.mu.Unlock()

	reward := &Reward{
		ID:           ident.New("RWD"),
		CitizenEmail: citizenEmail,
		Category:     category,
		Points:       points,
		Description:  description,
		EarnedDate:   dateOf(earned),
		RelatedID:    relatedID,
	}
	l.rewards[reward.ID] = reward
	l.rewardsByCitizen[citizenEmail] = append(l.rewardsByCitizen[citizenEmail], reward.ID)
	return *reward
}

// RedeemPoints spends points on a catalog offer. The check is against the
// LIFETIME-earned total, not a netted balance - preserved intentionally, see
// the package comment. On success the redemption is worth pointsToUse * 0.5
// currency units and completes immediately.
func (l *Ledger) RedeemPoints(citizenEmail string, kind RedemptionKind, pointsToUse int) (Redemption, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.totalPointsLocked(citizenEmail) < pointsToUse {
		return Redemption{}, ErrInsufficientPoints
	}

	redemption := &Redemption{
		ID:           ident.New("RED"),
		CitizenEmail: citizenEmail,
		Kind:         kind,
		PointsUsed:   pointsToUse,
		RedeemedDate: dateOf(l.now()),
		Status:       "completed",
		Value:        PointsToCurrency(pointsToUse),
	}
	l.redemptions[redemption.ID] = redemption
	l.redemptionsByCitizen[citizenEmail] = append(l.redemptionsByCitizen[citizenEmail], redemption.ID)
	return *redemption, nil
}

// =============================================================================
// READS
// =============================================================================

// TotalPoints returns the citizen's lifetime-earned point total. Redemptions
// do not subtract from it.
func (l *Ledger) TotalPoints(citizenEmail string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalPointsLocked(citizenEmail)
}

// PointsRedeemed returns the sum of points the citizen has spent. Callers
// wanting a net balance compute TotalPoints - PointsRedeemed.
func (l *Ledger) PointsRedeemed(citizenEmail string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, id := range l.redemptionsByCitizen[citizenEmail] {
		total += l.redemptions[id].PointsUsed
	}
	return total
}

// RewardsForCitizen returns the citizen's rewards in accrual order.
func (l *Ledger) RewardsForCitizen(citizenEmail string) []Reward {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rewardsForCitizenLocked(citizenEmail)
}

// RedemptionsForCitizen returns the citizen's redemption history in order.
func (l *Ledger) RedemptionsForCitizen(citizenEmail string) []Redemption {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.redemptionsForCitizenLocked(citizenEmail)
}

// AllRewards returns every reward in the store.
func (l *Ledger) AllRewards() []Reward {
	l.mu.RLock()
	defer l.mu.RUnlock()

	citizens := make([]string, 0, len(l.rewardsByCitizen))
	for c := range l.rewardsByCitizen {
		citizens = append(citizens, c)
	}
	sort.Strings(citizens)

	var rewards []Reward
	for _, c := range citizens {
		for _, id := range l.rewardsByCitizen[c] {
			rewards = append(rewards, *l.rewards[id])
		}
	}
	return rewards
}

// CitizenSummary returns the citizen's full reward position: lifetime
// total, the tier derived from it, the five most recent rewards (newest
// first), and the redemption history.
func (l *Ledger) CitizenSummary(citizenEmail string) CitizenSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := l.totalPointsLocked(citizenEmail)
	rewards := l.rewardsForCitizenLocked(citizenEmail)
	redemptions := l.redemptionsForCitizenLocked(citizenEmail)

	recent := make([]Reward, len(rewards))
	copy(recent, rewards)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].EarnedDate.After(recent[j].EarnedDate)
	})
	if len(recent) > recentRewardLimit {
		recent = recent[:recentRewardLimit]
	}

	return CitizenSummary{
		TotalPoints:       total,
		CurrentTier:       TierFor(total),
		RecentRewards:     recent,
		RedemptionHistory: redemptions,
		RewardsCount:      len(rewards),
		RedemptionsCount:  len(redemptions),
	}
}

// Stats aggregates the reward economy across the entire store.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		UniqueParticipants: len(l.rewardsByCitizen),
		Breakdown:          make(map[Category]int),
	}
	for _, reward := range l.rewards {
		stats.TotalPointsIssued += reward.Points
		stats.Breakdown[reward.Category]++
	}
	for _, redemption := range l.redemptions {
		stats.TotalPointsRedeemed += redemption.PointsUsed
	}
	return stats
}

// =============================================================================
// INTERNAL
// =============================================================================

func (l *Ledger) totalPointsLocked(citizenEmail string) int {
	total := 0
	for _, id := range l.rewardsByCitizen[citizenEmail] {
		total += l.rewards[id].Points
	}
	return total
}

func (l *Ledger) rewardsForCitizenLocked(citizenEmail string) []Reward {
	ids := l.rewardsByCitizen[citizenEmail]
	rewards := make([]Reward, 0, len(ids))
	for _, id := range ids {
		rewards = append(rewards, *l.rewards[id])
	}
	return rewards
}

func (l *Ledger) redemptionsForCitizenLocked(citizenEmail string) []Redemption {
	ids := l.redemptionsByCitizen[citizenEmail]
	redemptions := make([]Redemption, 0, len(ids))
	for _, id := range ids {
		redemptions = append(redemptions, *l.redemptions[id])
	}
	return redemptions
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
