/*
simulator.go - Synthetic telemetry generator

PURPOSE:
  Produces a fresh city-wide snapshot on a fixed cadence so dashboards and
  the WebSocket feed have live-looking data without real sensors.

DESIGN:
  - Background goroutine driven by a time.Ticker
  - Each tick derives the next reading from the previous one (bounded drift)
  - New snapshots are pushed through the Hub to any live subscribers

USAGE:
  sim := NewSimulator(store, hub)
  sim.Start()
  // ... later
  sim.Stop()
*/
package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Simulator appends synthetic snapshots to the store at a fixed interval.
type Simulator struct {
	Store    *Store
	Hub      *Hub
	Interval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSimulator creates a simulator with the default 5s cadence.
func NewSimulator(store *Store, hub *Hub) *Simulator {
	return &Simulator{
		Store:    store,
		Hub:      hub,
		Interval: 5 * time.Second,
		stop:     make(chan bool),
	}
}

// Start begins the background generation loop.
func (sim *Simulator) Start() {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	sim.ticker = time.NewTicker(sim.Interval)
	sim.wg.Add(1)

	go sim.run()

	log.Info().Dur("interval", sim.Interval).Msg("telemetry simulator started")
}

// Stop halts the loop and waits for the goroutine to exit.
func (sim *Simulator) Stop() {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	if sim.ticker != nil {
		sim.ticker.Stop()
		close(sim.stop)
		sim.wg.Wait()
		log.Info().Msg("telemetry simulator stopped")
	}
}

func (sim *Simulator) run() {
	defer sim.wg.Done()

	for {
		select {
		case <-sim.ticker.C:
			sim.Tick()
		case <-sim.stop:
			return
		}
	}
}

// Tick generates and publishes one snapshot. Exposed for tests and for
// warming the feed at startup.
func (sim *Simulator) Tick() {
	snap := sim.Store.NextSnapshot()
	if sim.Hub != nil {
		sim.Hub.Publish(snap)
	}
}
