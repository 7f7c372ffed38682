/*
scheduler.go - Background supply-status refresh

PURPOSE:
  Bill records cache a supply status computed when the bill was last
  touched, so an untouched pending bill can drift past its grace period
  without the stored status changing. This scheduler periodically re-derives
  the cached status for every pending bill.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Only pending bills are rewritten; payment status is never touched
  - Handlers that recompute live (citizen summary) are unaffected

USAGE:
  refresher := NewStatusRefresher(ledger)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - billing/ledger.go: RefreshSupplyStatuses
*/
package api

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/civista/water-office/billing"
)

// StatusRefresher keeps cached bill supply statuses from going stale.
type StatusRefresher struct {
	Ledger   *billing.Ledger
	Interval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatusRefresher creates a refresher with the default hourly interval.
func NewStatusRefresher(ledger *billing.Ledger) *StatusRefresher {
	return &StatusRefresher{
		Ledger:   ledger,
		Interval: time.Hour,
		stop:     make(chan bool),
	}
}

// Start begins the refresh loop.
func (sr *StatusRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.ticker = time.NewTicker(sr.Interval)
	sr.wg.Add(1)

	go sr.run()

	log.Info().Dur("interval", sr.Interval).Msg("supply-status refresher started")
}

// Stop stops the loop and waits for the goroutine to exit.
func (sr *StatusRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker != nil {
		sr.ticker.Stop()
		close(sr.stop)
		sr.wg.Wait()
		log.Info().Msg("supply-status refresher stopped")
	}
}

func (sr *StatusRefresher) run() {
	defer sr.wg.Done()

	// Run immediately on start
	sr.RunNow()

	for {
		select {
		case <-sr.ticker.C:
			sr.RunNow()
		case <-sr.stop:
			return
		}
	}
}

// RunNow performs one refresh pass.
func (sr *StatusRefresher) RunNow() {
	changed := sr.Ledger.RefreshSupplyStatuses()
	if changed > 0 {
		log.Info().Int("bills_updated", changed).Msg("supply statuses refreshed")
	}
}
