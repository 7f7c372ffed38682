package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/civista/water-office/telemetry"
)

// =============================================================================
// ZONE ENDPOINTS
// =============================================================================

// ListZones returns every distribution zone.
// GET /api/zones
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones := h.Telemetry.Zones()
	dtos := make([]ZoneDTO, len(zones))
	for i, z := range zones {
		dtos[i] = toZoneDTO(z)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetZone returns one zone by ID.
// GET /api/zones/{zoneID}
func (h *Handler) GetZone(w http.ResponseWriter, r *http.Request) {
	zone, err := h.Telemetry.Zone(chi.URLParam(r, "zoneID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Zone not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toZoneDTO(zone))
}

// ZoneIncidents returns the incidents reported in one zone.
// GET /api/zones/{zoneID}/incidents
func (h *Handler) ZoneIncidents(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")

	dtos := []IncidentDTO{}
	for _, inc := range h.Telemetry.Incidents("") {
		if inc.ZoneID == zoneID {
			dtos = append(dtos, toIncidentDTO(inc))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TELEMETRY ENDPOINTS
// =============================================================================

// telemetryWindow is how many snapshots the REST feed returns.
const telemetryWindow = 24

// CityTelemetry returns recent city-wide readings, oldest first.
// GET /api/telemetry
func (h *Handler) CityTelemetry(w http.ResponseWriter, r *http.Request) {
	snaps := h.Telemetry.Snapshots(telemetryWindow)
	dtos := make([]SnapshotDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toSnapshotDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// FairnessMetrics returns the distribution-fairness history.
// GET /api/telemetry/fairness
func (h *Handler) FairnessMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := h.Telemetry.FairnessHistory()
	dtos := make([]FairnessMetricDTO, len(metrics))
	for i, m := range metrics {
		dtos[i] = FairnessMetricDTO{
			Timestamp:             m.Timestamp.Format(time.RFC3339),
			CitywideScore:         m.CitywideScore,
			UnderservedWards:      m.UnderservedWards,
			ComplaintsResolvedPct: m.ComplaintsResolvedPct,
			AverageSupplyHours:    m.AverageSupplyHours,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DemandForecast returns the 24h demand horizon.
// GET /api/telemetry/demand-forecast
func (h *Handler) DemandForecast(w http.ResponseWriter, r *http.Request) {
	points := h.Telemetry.Forecast()
	dtos := make([]ForecastPointDTO, len(points))
	for i, p := range points {
		dtos[i] = ForecastPointDTO{
			Timestamp: p.Timestamp.Format(time.RFC3339),
			DemandML:  p.DemandML,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INCIDENT ENDPOINTS
// =============================================================================

// ListIncidents returns incidents, optionally filtered by zone and status.
// GET /api/incidents?zone_id=...&status=...
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	zoneID := r.URL.Query().Get("zone_id")
	status := r.URL.Query().Get("status")

	dtos := []IncidentDTO{}
	for _, inc := range h.Telemetry.Incidents(status) {
		if zoneID != "" && inc.ZoneID != zoneID {
			continue
		}
		dtos = append(dtos, toIncidentDTO(inc))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateIncident accepts a citizen incident report.
// POST /api/incidents
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	incidentType, err := telemetry.ParseIncidentType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid incident type", err)
		return
	}

	incident, err := h.Telemetry.ReportIncident(telemetry.CitizenReport{
		Name:        req.Name,
		Phone:       req.Phone,
		WardNumber:  req.WardNumber,
		ZoneID:      req.ZoneID,
		Type:        incidentType,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown zone", nil)
		return
	}

	writeJSON(w, http.StatusCreated, toIncidentDTO(incident))
}

// =============================================================================
// PUMP OPERATIONS ENDPOINTS
// =============================================================================

// ListSchedules returns all pump schedules.
// GET /api/pumps/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.Telemetry.Schedules()
	dtos := make([]PumpScheduleDTO, len(schedules))
	for i, s := range schedules {
		dtos[i] = toPumpScheduleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveSchedule approves a schedule for execution.
// POST /api/pumps/schedules/{scheduleID}/approve
func (h *Handler) ApproveSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Telemetry.ApproveSchedule(chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Schedule not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPumpScheduleDTO(schedule))
}

// ListStations returns pump station status.
// GET /api/pumps/stations
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations := h.Telemetry.Stations()
	dtos := make([]PumpStationDTO, len(stations))
	for i, s := range stations {
		dtos[i] = PumpStationDTO{
			ID:             s.ID,
			Name:           s.Name,
			ConnectedZones: s.ConnectedZones,
			Status:         s.Status,
			EnergyUseKW:    s.EnergyUseKW,
			HealthScore:    s.HealthScore,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListReservoirs returns reservoir storage levels.
// GET /api/pumps/reservoirs
func (h *Handler) ListReservoirs(w http.ResponseWriter, r *http.Request) {
	reservoirs := h.Telemetry.Reservoirs()
	dtos := make([]ReservoirDTO, len(reservoirs))
	for i, res := range reservoirs {
		dtos[i] = ReservoirDTO{
			ID:             res.ID,
			Name:           res.Name,
			CapacityML:     res.CapacityML,
			CurrentLevelML: res.CurrentLevelML,
			Trend:          res.Trend,
			PumpsConnected: res.PumpsConnected,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// InsightsSummary returns the condensed network-health view.
// GET /api/insights/summary
func (h *Handler) InsightsSummary(w http.ResponseWriter, r *http.Request) {
	ins := h.Telemetry.Insights()
	writeJSON(w, http.StatusOK, InsightsDTO{
		GeneratedAt:      ins.GeneratedAt.Format(time.RFC3339),
		PressurePSI:      ins.PressurePSI,
		EnergyKW:         ins.EnergyKW,
		CitywideFairness: ins.CitywideFairness,
		UnderservedWards: ins.UnderservedWards,
		OpenIncidents:    ins.OpenIncidents,
		PendingSchedules: ins.PendingSchedules,
	})
}

// =============================================================================
// REALTIME FEED
// =============================================================================

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS for the REST routes is handled by middleware; browsers send the
	// Origin header on WS upgrades too, so accept any here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope frames every message pushed down the telemetry stream.
type wsEnvelope struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      SnapshotDTO `json:"data"`
}

// TelemetryStream upgrades to a WebSocket and pushes each new snapshot as
// the simulator produces it. The connection closes when the client goes away.
// GET /api/ws/telemetry
func (h *Handler) TelemetryStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the latest reading immediately so clients don't wait a full tick.
	if snap, ok := h.Telemetry.Latest(); ok {
		if err := writeSnapshot(conn, snap); err != nil {
			return
		}
	}

	for {
		select {
		case snap, ok := <-sub:
			if !ok {
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap telemetry.Snapshot) error {
	return conn.WriteJSON(wsEnvelope{
		Type:      "telemetry_snapshot",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      toSnapshotDTO(snap),
	})
}
