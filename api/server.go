/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. hlog:       Structured request logging via zerolog
  4. CORS:       Cross-origin requests for the citizen portal

ROUTE GROUPS:
  /api/auth/*               Registration, login, password reset
  /api/billing/*            Bills, payments, invoices, stats
  /api/rewards-emergency/*  Rewards and emergency contacts
  /api/zones/*              Distribution zones
  /api/telemetry/*          City telemetry, fairness, forecast
  /api/incidents/*          Incident reports
  /api/pumps/*              Pump schedules, stations, reservoirs
  /api/insights/*           Network-health summary
  /api/ws/telemetry         Realtime snapshot stream
  /health                   Liveness probe

SEE ALSO:
  - handlers.go, auth.go, rewards.go, water.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

func requestLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(requestLog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/reset-request", h.ResetRequest)
			r.Post("/reset-confirm", h.ResetConfirm)
			r.With(h.RequireAuth).Get("/me", h.Me)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Post("/bills/create", h.CreateBill)
			r.Get("/bills/list/all", h.ListAllBills)
			r.Get("/bills/{citizenEmail}", h.GetCitizenBills)
			r.Post("/payments/process", h.ProcessPayment)
			r.Get("/payments/{paymentID}", h.GetPayment)
			r.Get("/invoices/{invoiceNumber}", h.GetInvoice)
			r.Get("/stats/overview", h.BillingStats)
		})

		r.Route("/rewards-emergency", func(r chi.Router) {
			r.Post("/rewards/add", h.AddReward)
			r.Get("/rewards/citizen/{citizenEmail}", h.CitizenRewardStatus)
			r.Post("/rewards/redeem", h.RedeemPoints)
			r.Get("/rewards/stats", h.RewardStats)

			r.Get("/emergency/contacts", h.ListContacts)
			r.Get("/emergency/contacts/urgent", h.UrgentContacts)
			r.Get("/emergency/contacts/type/{contactType}", h.ContactsByType)
			r.Post("/emergency/contacts/add", h.AddContact)
			r.Post("/emergency/request", h.RequestService)
		})

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", h.ListZones)
			r.Get("/{zoneID}", h.GetZone)
			r.Get("/{zoneID}/incidents", h.ZoneIncidents)
		})

		r.Route("/telemetry", func(r chi.Router) {
			r.Get("/", h.CityTelemetry)
			r.Get("/fairness", h.FairnessMetrics)
			r.Get("/demand-forecast", h.DemandForecast)
		})

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", h.ListIncidents)
			r.Post("/", h.CreateIncident)
		})

		r.Route("/pumps", func(r chi.Router) {
			r.Get("/schedules", h.ListSchedules)
			r.Post("/schedules/{scheduleID}/approve", h.ApproveSchedule)
			r.Get("/stations", h.ListStations)
			r.Get("/reservoirs", h.ListReservoirs)
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/summary", h.InsightsSummary)
		})

		r.Get("/ws/telemetry", h.TelemetryStream)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
