package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civista/water-office/telemetry"
)

func TestZoneEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var zones []ZoneDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/zones", nil, &zones)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, zones, 5)

	var zone ZoneDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/zones/"+zones[0].ID, nil, &zone)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, zones[0].Name, zone.Name)

	var errResp ErrorResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/zones/zone-404", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Zone not found", errResp.Error)
}

func TestIncidentEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN a citizen report against a known zone
	var created IncidentDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/incidents/", CreateIncidentRequest{
		Name:        "Asha Verma",
		Phone:       "9876501234",
		WardNumber:  12,
		ZoneID:      "zone-1",
		Type:        "leak",
		Description: "Water pooling near the market",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, strings.HasPrefix(created.ID, "citizen-"))
	assert.Equal(t, "open", created.Status)
	assert.Equal(t, "moderate", created.Severity)

	// THEN it appears in the zone's incident list
	var zoneIncidents []IncidentDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/zones/zone-1/incidents", nil, &zoneIncidents)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ids := make([]string, 0, len(zoneIncidents))
	for _, inc := range zoneIncidents {
		ids = append(ids, inc.ID)
	}
	assert.Contains(t, ids, created.ID)

	// AND in the status-filtered list
	var open []IncidentDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/incidents/?status=open&zone_id=zone-1", nil, &open)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, inc := range open {
		assert.Equal(t, "open", inc.Status)
		assert.Equal(t, "zone-1", inc.ZoneID)
	}

	// Unknown zone is rejected
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/incidents/", CreateIncidentRequest{
		ZoneID: "zone-404", Type: "leak",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPumpEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var schedules []PumpScheduleDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/pumps/schedules", nil, &schedules)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, schedules)

	var scheduled string
	for _, s := range schedules {
		if s.Status == "scheduled" {
			scheduled = s.ID
		}
	}
	require.NotEmpty(t, scheduled)

	var approved PumpScheduleDTO
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pumps/schedules/"+scheduled+"/approve", nil, &approved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", approved.Status)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pumps/schedules/sched-404/approve", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var stations []PumpStationDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pumps/stations", nil, &stations)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, stations, 3)

	var reservoirs []ReservoirDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/pumps/reservoirs", nil, &reservoirs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, reservoirs, 2)
}

func TestTelemetryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var snaps []SnapshotDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/telemetry/", nil, &snaps)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, snaps)

	var fairness []FairnessMetricDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/telemetry/fairness", nil, &fairness)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, fairness, 7)

	var forecast []ForecastPointDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/telemetry/demand-forecast", nil, &forecast)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, forecast, 24)

	var insights InsightsDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/insights/summary", nil, &insights)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, insights.PressurePSI, 0.0)
}

func TestTelemetryStream(t *testing.T) {
	srv, h := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/telemetry"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// The latest snapshot is pushed immediately on connect.
	var first wsEnvelope
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "telemetry_snapshot", first.Type)

	// A published snapshot reaches the stream.
	h.Hub.Publish(telemetry.Snapshot{Timestamp: time.Now(), FlowML: 42})
	var second wsEnvelope
	require.NoError(t, conn.ReadJSON(&second))
	assert.InDelta(t, 42.0, second.Data.FlowML, 0.001)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
