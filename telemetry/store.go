package telemetry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// snapshotHistoryLimit caps the retained snapshot ring so the store does not
// grow without bound while the simulator runs.
const snapshotHistoryLimit = 288

var (
	ErrZoneNotFound     = errors.New("zone not found")
	ErrScheduleNotFound = errors.New("pump schedule not found")
)

// Store holds the simulated network state. Static topology (zones, pumps,
// reservoirs) is seeded once; snapshots, fairness history and incidents
// accumulate while the process runs.
type Store struct {
	mu sync.RWMutex

	zones      map[string]Zone
	snapshots  []Snapshot
	fairness   []FairnessMetric
	incidents  map[string]Incident
	schedules  map[string]PumpSchedule
	stations   map[string]PumpStation
	reservoirs map[string]Reservoir
	forecast   []ForecastPoint

	nextIncident int
	now          func() time.Time
	rng          *rand.Rand
}

// NewStore returns a store seeded with the demo network topology.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock injects the clock so tests control timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	s := &Store{
		zones:        make(map[string]Zone),
		incidents:    make(map[string]Incident),
		schedules:    make(map[string]PumpSchedule),
		stations:     make(map[string]PumpStation),
		reservoirs:   make(map[string]Reservoir),
		nextIncident: 1,
		now:          now,
		rng:          rand.New(rand.NewSource(now().UnixNano())),
	}
	s.seed()
	return s
}

// =============================================================================
// READ PATHS
// =============================================================================

// Zones returns every distribution zone, sorted by ward number.
func (s *Store) Zones() []Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WardNumber < out[j].WardNumber })
	return out
}

// Zone looks up a single zone by ID.
func (s *Store) Zone(id string) (Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	z, ok := s.zones[id]
	if !ok {
		return Zone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	return z, nil
}

// Snapshots returns up to limit of the most recent readings, oldest first.
// limit <= 0 returns the full retained history.
func (s *Store) Snapshots(limit int) []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.snapshots)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Snapshot, n)
	copy(out, s.snapshots[len(s.snapshots)-n:])
	return out
}

// Latest returns the newest snapshot, or false when none exist yet.
func (s *Store) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return Snapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// FairnessHistory returns the fairness series, oldest first.
func (s *Store) FairnessHistory() []FairnessMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FairnessMetric, len(s.fairness))
	copy(out, s.fairness)
	return out
}

// Incidents returns reports newest first, optionally filtered by status
// ("" matches everything).
func (s *Store) Incidents(status string) []Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if status != "" && inc.Status != status {
			continue
		}
		out = append(out, inc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out
}

// Schedules returns every pump schedule, soonest start first.
func (s *Store) Schedules() []PumpSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PumpSchedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		out = append(out, sch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Stations returns every pump station sorted by ID.
func (s *Store) Stations() []PumpStation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PumpStation, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reservoirs returns every reservoir sorted by ID.
func (s *Store) Reservoirs() []Reservoir {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reservoir, 0, len(s.reservoirs))
	for _, r := range s.reservoirs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Forecast returns the 24h demand forecast.
func (s *Store) Forecast() []ForecastPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ForecastPoint, len(s.forecast))
	copy(out, s.forecast)
	return out
}

// Insights condenses current network state into the dashboard summary.
func (s *Store) Insights() Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ins := Insights{GeneratedAt: s.now()}
	if len(s.snapshots) > 0 {
		last := s.snapshots[len(s.snapshots)-1]
		ins.PressurePSI = last.PressurePSI
		ins.EnergyKW = last.EnergyKW
	}
	if len(s.fairness) > 0 {
		last := s.fairness[len(s.fairness)-1]
		ins.CitywideFairness = last.CitywideScore
		ins.UnderservedWards = last.UnderservedWards
	}
	for _, inc := range s.incidents {
		if inc.Status == "open" {
			ins.OpenIncidents++
		}
	}
	for _, sch := range s.schedules {
		if sch.Status == "scheduled" {
			ins.PendingSchedules++
		}
	}
	return ins
}

// =============================================================================
// WRITE PATHS
// =============================================================================

// ReportIncident records a citizen-submitted report. New reports always start
// open with moderate severity; an operator triages them later.
func (s *Store) ReportIncident(report CitizenReport) (Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zone, ok := s.zones[report.ZoneID]
	if !ok {
		return Incident{}, fmt.Errorf("%w: %s", ErrZoneNotFound, report.ZoneID)
	}

	inc := Incident{
		ID:          fmt.Sprintf("citizen-%d", s.nextIncident),
		ZoneID:      zone.ID,
		ReportedBy:  "citizen",
		Type:        report.Type,
		Severity:    "moderate",
		Description: report.Description,
		ReportedAt:  s.now(),
		Status:      "open",
		Latitude:    zone.CentroidLatitude,
		Longitude:   zone.CentroidLongitude,
	}
	s.nextIncident++
	s.incidents[inc.ID] = inc
	return inc, nil
}

// ApproveSchedule moves a scheduled pumping window to running.
func (s *Store) ApproveSchedule(id string) (PumpSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, ok := s.schedules[id]
	if !ok {
		return PumpSchedule{}, fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
	}
	sch.Status = "running"
	s.schedules[id] = sch
	return sch, nil
}

// AppendSnapshot records a reading and trims history past the retention cap.
func (s *Store) AppendSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snap)
	if len(s.snapshots) > snapshotHistoryLimit {
		s.snapshots = s.snapshots[len(s.snapshots)-snapshotHistoryLimit:]
	}
}

// NextSnapshot synthesizes a plausible reading from the previous one and
// appends it. Used by the simulator tick.
func (s *Store) NextSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Timestamp:   s.now(),
		FlowML:      42.0,
		PressurePSI: 55.0,
		EnergyKW:    820.0,
	}
	if len(s.snapshots) > 0 {
		prev := s.snapshots[len(s.snapshots)-1]
		snap.FlowML = drift(s.rng, prev.FlowML, 1.5, 20, 80)
		snap.PressurePSI = drift(s.rng, prev.PressurePSI, 2.0, 30, 80)
		snap.EnergyKW = drift(s.rng, prev.EnergyKW, 25, 400, 1400)
	}
	for _, inc := range s.incidents {
		if inc.Status == "open" && sameDay(inc.ReportedAt, snap.Timestamp) {
			snap.IncidentsToday++
		}
	}

	s.snapshots = append(s.snapshots, snap)
	if len(s.snapshots) > snapshotHistoryLimit {
		s.snapshots = s.snapshots[len(s.snapshots)-snapshotHistoryLimit:]
	}
	return snap
}

// drift nudges v by a bounded random step, clamped to [lo, hi].
func drift(rng *rand.Rand, v, step, lo, hi float64) float64 {
	v += (rng.Float64()*2 - 1) * step
	return math.Max(lo, math.Min(hi, v))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// =============================================================================
// SEED DATA
// =============================================================================

func (s *Store) seed() {
	now := s.now()

	zones := []Zone{
		{ID: "zone-1", Name: "Sadar", WardNumber: 12, PopulationServed: 48000, SupplyHoursPerDay: 6.5, Pressure: PressureMedium, FairnessScore: 0.74, CentroidLatitude: 21.1702, CentroidLongitude: 81.6296},
		{ID: "zone-2", Name: "Civil Lines", WardNumber: 5, PopulationServed: 31000, SupplyHoursPerDay: 9.0, Pressure: PressureHigh, FairnessScore: 0.91, CentroidLatitude: 21.1458, CentroidLongitude: 81.6601},
		{ID: "zone-3", Name: "Tatibandh", WardNumber: 27, PopulationServed: 56000, SupplyHoursPerDay: 4.0, Pressure: PressureLow, FairnessScore: 0.52, CentroidLatitude: 21.1938, CentroidLongitude: 81.5883},
		{ID: "zone-4", Name: "Shankar Nagar", WardNumber: 18, PopulationServed: 39000, SupplyHoursPerDay: 7.5, Pressure: PressureMedium, FairnessScore: 0.68, CentroidLatitude: 21.1211, CentroidLongitude: 81.6740},
		{ID: "zone-5", Name: "Gudhiyari", WardNumber: 33, PopulationServed: 62000, SupplyHoursPerDay: 3.5, Pressure: PressureLow, FairnessScore: 0.47, CentroidLatitude: 21.2096, CentroidLongitude: 81.6145},
	}
	for _, z := range zones {
		z.LastUpdated = now
		s.zones[z.ID] = z
	}

	s.stations["pump-1"] = PumpStation{ID: "pump-1", Name: "Kharun Intake Station", ConnectedZones: []string{"zone-1", "zone-2"}, Status: "operational", EnergyUseKW: 320, HealthScore: 0.92}
	s.stations["pump-2"] = PumpStation{ID: "pump-2", Name: "Tatibandh Booster", ConnectedZones: []string{"zone-3", "zone-5"}, Status: "operational", EnergyUseKW: 280, HealthScore: 0.77}
	s.stations["pump-3"] = PumpStation{ID: "pump-3", Name: "Shankar Nagar Booster", ConnectedZones: []string{"zone-4"}, Status: "maintenance", EnergyUseKW: 0, HealthScore: 0.41}

	s.reservoirs["res-1"] = Reservoir{ID: "res-1", Name: "Bhatagaon Reservoir", CapacityML: 180, CurrentLevelML: 122, Trend: "falling", PumpsConnected: []string{"pump-1"}}
	s.reservoirs["res-2"] = Reservoir{ID: "res-2", Name: "Mowa Overhead Tank", CapacityML: 45, CurrentLevelML: 38, Trend: "stable", PumpsConnected: []string{"pump-2", "pump-3"}}

	s.schedules["sched-1"] = PumpSchedule{
		ID: "sched-1", PumpID: "pump-2", ZoneID: "zone-5",
		StartTime: now.Add(2 * time.Hour), EndTime: now.Add(5 * time.Hour),
		FlowRateLPS: 140, Status: "scheduled",
		RecommendationReason: "Gudhiyari supply hours below 4h target; reservoir level permits extended run",
	}
	s.schedules["sched-2"] = PumpSchedule{
		ID: "sched-2", PumpID: "pump-1", ZoneID: "zone-1",
		StartTime: now.Add(-1 * time.Hour), EndTime: now.Add(3 * time.Hour),
		FlowRateLPS: 210, Status: "running",
		RecommendationReason: "Morning peak demand window for Sadar",
	}

	s.incidents["sensor-1"] = Incident{
		ID: "sensor-1", ZoneID: "zone-3", ReportedBy: "sensor",
		Type: IncidentLowPressure, Severity: "critical",
		Description: "Pressure below 20 PSI at Tatibandh main for 30 minutes",
		ReportedAt:  now.Add(-4 * time.Hour), Status: "open",
		Latitude: 21.1938, Longitude: 81.5883,
	}
	s.incidents["sensor-2"] = Incident{
		ID: "sensor-2", ZoneID: "zone-1", ReportedBy: "sensor",
		Type: IncidentLeak, Severity: "moderate",
		Description: "Flow imbalance on Sadar feeder suggests distribution leak",
		ReportedAt:  now.Add(-26 * time.Hour), Status: "acknowledged",
		Latitude: 21.1702, Longitude: 81.6296,
	}

	for day := 6; day >= 0; day-- {
		ts := now.AddDate(0, 0, -day)
		s.fairness = append(s.fairness, FairnessMetric{
			Timestamp:             ts,
			CitywideScore:         0.62 + 0.02*float64(6-day),
			UnderservedWards:      9 - (6 - day),
			ComplaintsResolvedPct: 68 + 3*float64(6-day),
			AverageSupplyHours:    5.4 + 0.15*float64(6-day),
		})
	}

	for h := 0; h < 24; h++ {
		demand := 34.0 + 14*math.Sin(float64(h-6)*math.Pi/12)
		if demand < 20 {
			demand = 20
		}
		s.forecast = append(s.forecast, ForecastPoint{
			Timestamp: now.Truncate(time.Hour).Add(time.Duration(h) * time.Hour),
			DemandML:  math.Round(demand*10) / 10,
		})
	}

	s.snapshots = append(s.snapshots, Snapshot{
		Timestamp: now, FlowML: 42.0, PressurePSI: 55.0, EnergyKW: 820.0, IncidentsToday: 1,
	})
}
