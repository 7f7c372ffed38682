/*
Package telemetry is the simulated sensor and incident feed for the water
network: distribution zones, city-wide flow/pressure snapshots, fairness
metrics, incident reports, and pump operations data.

The store is seeded with a static network description and grows snapshots
and incidents over time. A Simulator appends synthetic snapshots on a fixed
cadence and publishes them through a Hub to WebSocket subscribers.

SEE ALSO:
  - store.go: seeded in-memory store
  - simulator.go: periodic snapshot generation
  - hub.go: push-broadcast channel
*/
package telemetry

import (
	"fmt"
	"time"
)

// PressureLevel is a zone's qualitative pressure band.
type PressureLevel string

const (
	PressureLow    PressureLevel = "low"
	PressureMedium PressureLevel = "medium"
	PressureHigh   PressureLevel = "high"
)

// Zone is one distribution zone of the network.
type Zone struct {
	ID                string
	Name              string
	WardNumber        int
	PopulationServed  int
	SupplyHoursPerDay float64
	Pressure          PressureLevel
	LastUpdated       time.Time
	FairnessScore     float64
	CentroidLatitude  float64
	CentroidLongitude float64
}

// Snapshot is one city-wide telemetry reading.
type Snapshot struct {
	Timestamp      time.Time
	FlowML         float64
	PressurePSI    float64
	EnergyKW       float64
	IncidentsToday int
}

// FairnessMetric is one day's distribution-fairness reading.
type FairnessMetric struct {
	Timestamp             time.Time
	CitywideScore         float64
	UnderservedWards      int
	ComplaintsResolvedPct float64
	AverageSupplyHours    float64
}

// =============================================================================
// INCIDENTS
// =============================================================================

// IncidentType classifies what went wrong.
type IncidentType string

const (
	IncidentLeak        IncidentType = "leak"
	IncidentLowPressure IncidentType = "low_pressure"
	IncidentContaminate IncidentType = "contamination"
	IncidentOutage      IncidentType = "outage"
	IncidentOverPumping IncidentType = "over_pumping"
)

// ParseIncidentType converts external string input into an IncidentType.
func ParseIncidentType(s string) (IncidentType, error) {
	switch IncidentType(s) {
	case IncidentLeak, IncidentLowPressure, IncidentContaminate, IncidentOutage, IncidentOverPumping:
		return IncidentType(s), nil
	}
	return "", fmt.Errorf("unknown incident type %q", s)
}

// Incident is one reported network problem, from a sensor or a citizen.
type Incident struct {
	ID          string
	ZoneID      string
	ReportedBy  string // "sensor" or "citizen"
	Type        IncidentType
	Severity    string // low, moderate, critical
	Description string
	ReportedAt  time.Time
	Status      string // open, acknowledged, resolved
	Latitude    float64
	Longitude   float64
}

// CitizenReport is the input for a citizen-submitted incident.
type CitizenReport struct {
	Name        string
	Phone       string
	WardNumber  int
	ZoneID      string
	Type        IncidentType
	Description string
}

// =============================================================================
// PUMP OPERATIONS
// =============================================================================

// PumpSchedule is one planned pumping window.
type PumpSchedule struct {
	ID                   string
	PumpID               string
	ZoneID               string
	StartTime            time.Time
	EndTime              time.Time
	FlowRateLPS          float64
	Status               string // scheduled, running, paused, completed
	RecommendationReason string
}

// PumpStation is one physical pumping site.
type PumpStation struct {
	ID             string
	Name           string
	ConnectedZones []string
	Status         string // operational, maintenance, offline
	EnergyUseKW    float64
	HealthScore    float64
}

// Reservoir is one storage site.
type Reservoir struct {
	ID             string
	Name           string
	CapacityML     float64
	CurrentLevelML float64
	Trend          string // rising, falling, stable
	PumpsConnected []string
}

// ForecastPoint is one point of the demand-forecast horizon.
type ForecastPoint struct {
	Timestamp time.Time
	DemandML  float64
}

// Insights is the condensed network-health summary for the dashboard.
type Insights struct {
	GeneratedAt      time.Time
	PressurePSI      float64
	EnergyKW         float64
	CitywideFairness float64
	UnderservedWards int
	OpenIncidents    int
	PendingSchedules int
}
