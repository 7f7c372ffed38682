/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Billing endpoints using these types
  - rewards.go, auth.go, water.go: The other endpoint groups
*/
package api

import (
	"time"

	"github.com/civista/water-office/billing"
	"github.com/civista/water-office/directory"
	"github.com/civista/water-office/rewards"
	"github.com/civista/water-office/telemetry"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// ErrorResponse is the JSON envelope for all error statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// BILLING
// =============================================================================

// BillDTO represents a bill in API responses.
type BillDTO struct {
	ID            string  `json:"id"`
	CitizenEmail  string  `json:"citizen_email"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"`
	CreatedDate   string  `json:"created_date"`
	Description   string  `json:"description"`
	PaymentStatus string  `json:"payment_status"`
	SupplyStatus  string  `json:"supply_status"`
}

func toBillDTO(b billing.Bill) BillDTO {
	return BillDTO{
		ID:            b.ID,
		CitizenEmail:  b.CitizenEmail,
		Amount:        b.Amount.InexactFloat64(),
		DueDate:       b.DueDate.Format(dateLayout),
		CreatedDate:   b.CreatedDate.Format(dateLayout),
		Description:   b.Description,
		PaymentStatus: string(b.PaymentStatus),
		SupplyStatus:  string(b.SupplyStatus),
	}
}

// CreateBillRequest is the request to create a bill.
type CreateBillRequest struct {
	CitizenEmail string  `json:"citizen_email"`
	Amount       float64 `json:"amount"`
	DueDate      string  `json:"due_date"`
	Description  string  `json:"description"`
}

// CitizenBillStatusDTO is the per-citizen billing summary.
type CitizenBillStatusDTO struct {
	Bills        []BillDTO `json:"bills"`
	TotalPending float64   `json:"total_pending"`
	SupplyStatus string    `json:"supply_status"`
	OverdueDays  int       `json:"overdue_days"`
}

// PaymentRequest is the request to pay a bill.
type PaymentRequest struct {
	BillID        string  `json:"bill_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

// PaymentResponse confirms a processed payment.
type PaymentResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	BillID        string `json:"bill_id"`
	PaymentID     string `json:"payment_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// PaymentDTO represents a payment record.
type PaymentDTO struct {
	ID              string  `json:"id"`
	BillID          string  `json:"bill_id"`
	Amount          float64 `json:"amount"`
	PaidDate        string  `json:"paid_date"`
	PaymentMethod   string  `json:"payment_method"`
	ReferenceNumber string  `json:"reference_number"`
}

// InvoiceDTO is the invoice lookup response.
type InvoiceDTO struct {
	InvoiceNumber string `json:"invoice_number"`
	Generated     bool   `json:"generated"`
	Content       string `json:"content"`
}

// BillingStatsDTO is the municipal billing overview.
type BillingStatsDTO struct {
	TotalBills     int     `json:"total_bills"`
	PaidBills      int     `json:"paid_bills"`
	PendingBills   int     `json:"pending_bills"`
	TotalAmount    float64 `json:"total_amount"`
	TotalPaid      float64 `json:"total_paid"`
	TotalPending   float64 `json:"total_pending"`
	CollectionRate float64 `json:"collection_rate"`
}

// =============================================================================
// REWARDS
// =============================================================================

// RewardRequest is the request to grant points.
type RewardRequest struct {
	CitizenEmail string `json:"citizen_email"`
	RewardType   string `json:"reward_type"`
	Points       int    `json:"points"`
	Description  string `json:"description"`
	RelatedID    string `json:"related_id,omitempty"`
}

// RewardAddedResponse confirms a granted reward.
type RewardAddedResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	RewardID string `json:"reward_id"`
}

// RecentRewardDTO is one entry of a citizen's recent-reward list.
type RecentRewardDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	EarnedDate  string `json:"earned_date"`
}

// RewardStatusDTO is the citizen reward summary.
type RewardStatusDTO struct {
	CitizenEmail       string            `json:"citizen_email"`
	TotalPoints        int               `json:"total_points"`
	CurrentTier        string            `json:"current_tier"`
	TierBenefits       []string          `json:"tier_benefits"`
	DiscountPercentage float64           `json:"discount_percentage"`
	RewardsCount       int               `json:"rewards_count"`
	RedemptionsCount   int               `json:"redemptions_count"`
	RecentRewards      []RecentRewardDTO `json:"recent_rewards"`
}

// RedemptionRequest is the request to spend points.
type RedemptionRequest struct {
	CitizenEmail   string `json:"citizen_email"`
	RedemptionType string `json:"redemption_type"`
	PointsToUse    int    `json:"points_to_use"`
}

// RedemptionResponse confirms a redemption.
type RedemptionResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	PointsRemaining int     `json:"points_remaining"`
	CouponCode      string  `json:"coupon_code"`
	DiscountAmount  float64 `json:"discount_amount"`
}

// RewardStatsDTO is the reward-economy overview.
type RewardStatsDTO struct {
	TotalPointsIssued   int            `json:"total_points_issued"`
	TotalPointsRedeemed int            `json:"total_points_redeemed"`
	UniqueParticipants  int            `json:"unique_participants"`
	RewardsBreakdown    map[string]int `json:"rewards_breakdown"`
}

func toRewardStatusDTO(email string, s rewards.CitizenSummary) RewardStatusDTO {
	recent := make([]RecentRewardDTO, len(s.RecentRewards))
	for i, r := range s.RecentRewards {
		recent[i] = RecentRewardDTO{
			ID:          r.ID,
			Type:        string(r.Category),
			Points:      r.Points,
			Description: r.Description,
			EarnedDate:  r.EarnedDate.Format(dateLayout),
		}
	}
	return RewardStatusDTO{
		CitizenEmail:       email,
		TotalPoints:        s.TotalPoints,
		CurrentTier:        s.CurrentTier.Name,
		TierBenefits:       s.CurrentTier.Benefits,
		DiscountPercentage: s.CurrentTier.DiscountPercentage,
		RewardsCount:       s.RewardsCount,
		RedemptionsCount:   s.RedemptionsCount,
		RecentRewards:      recent,
	}
}

// =============================================================================
// EMERGENCY CONTACTS
// =============================================================================

// ContactDTO represents an emergency contact in full detail.
type ContactDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	Location        string  `json:"location"`
	Availability    string  `json:"availability"`
	ServiceCategory string  `json:"service_category"`
	ExperienceYears int     `json:"experience_years"`
	Rating          float64 `json:"rating"`
	Verified        bool    `json:"verified"`
}

func toContactDTO(c directory.Contact) ContactDTO {
	return ContactDTO{
		ID:              c.ID,
		Name:            c.Name,
		Type:            string(c.Type),
		Phone:           c.Phone,
		Email:           c.Email,
		Location:        c.Location,
		Availability:    c.Availability,
		ServiceCategory: string(c.Category),
		ExperienceYears: c.ExperienceYears,
		Rating:          c.Rating,
		Verified:        c.Verified,
	}
}

// UrgentContactDTO is the trimmed shape for the 24/7 list.
type UrgentContactDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Location     string  `json:"location"`
	Availability string  `json:"availability"`
	Rating       float64 `json:"rating"`
}

// AddContactRequest is the request to register a new contact.
type AddContactRequest struct {
	Name            string `json:"name"`
	ContactType     string `json:"contact_type"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Location        string `json:"location"`
	Availability    string `json:"availability"`
	ServiceCategory string `json:"service_category"`
	ExperienceYears int    `json:"experience_years"`
}

// ContactAddedResponse confirms a registered contact.
type ContactAddedResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ContactID string `json:"contact_id"`
}

// ServiceRequest asks a contact for emergency service.
type ServiceRequest struct {
	ContactID    string `json:"contact_id"`
	CitizenEmail string `json:"citizen_email"`
	Location     string `json:"location,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ServiceRequestResponse confirms a dispatched service request.
type ServiceRequestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	RequestID     string `json:"request_id"`
	ContactName   string `json:"contact_name"`
	ContactPhone  string `json:"contact_phone"`
	EstimatedTime string `json:"estimated_time"`
}

// =============================================================================
// AUTH
// =============================================================================

// RegisterRequest is the request to open a citizen account.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	District string `json:"district"`
	Tehsil   string `json:"tehsil"`
	Block    string `json:"block"`
	HouseNo  string `json:"house_no"`
}

// LoginRequest is the request to authenticate.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CitizenDTO represents a citizen account in API responses.
type CitizenDTO struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	District  string `json:"district"`
	Tehsil    string `json:"tehsil"`
	Block     string `json:"block"`
	HouseNo   string `json:"house_no"`
	CreatedAt string `json:"created_at"`
}

// AuthTokenResponse carries a bearer token plus the citizen it belongs to.
type AuthTokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	Citizen     CitizenDTO `json:"citizen"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes a password reset.
type PasswordResetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a bare informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// WATER NETWORK
// =============================================================================

// ZoneDTO represents a distribution zone.
type ZoneDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	WardNumber        int     `json:"ward_number"`
	PopulationServed  int     `json:"population_served"`
	SupplyHoursPerDay float64 `json:"supply_hours_per_day"`
	Pressure          string  `json:"pressure"`
	LastUpdated       string  `json:"last_updated"`
	FairnessScore     float64 `json:"fairness_score"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
}

func toZoneDTO(z telemetry.Zone) ZoneDTO {
	return ZoneDTO{
		ID:                z.ID,
		Name:              z.Name,
		WardNumber:        z.WardNumber,
		PopulationServed:  z.PopulationServed,
		SupplyHoursPerDay: z.SupplyHoursPerDay,
		Pressure:          string(z.Pressure),
		LastUpdated:       z.LastUpdated.Format(time.RFC3339),
		FairnessScore:     z.FairnessScore,
		Latitude:          z.CentroidLatitude,
		Longitude:         z.CentroidLongitude,
	}
}

// SnapshotDTO is one telemetry reading.
type SnapshotDTO struct {
	Timestamp      string  `json:"timestamp"`
	FlowML         float64 `json:"flow_ml"`
	PressurePSI    float64 `json:"pressure_psi"`
	EnergyKW       float64 `json:"energy_kw"`
	IncidentsToday int     `json:"incidents_today"`
}

func toSnapshotDTO(s telemetry.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		Timestamp:      s.Timestamp.Format(time.RFC3339),
		FlowML:         s.FlowML,
		PressurePSI:    s.PressurePSI,
		EnergyKW:       s.EnergyKW,
		IncidentsToday: s.IncidentsToday,
	}
}

// FairnessMetricDTO is one fairness reading.
type FairnessMetricDTO struct {
	Timestamp             string  `json:"timestamp"`
	CitywideScore         float64 `json:"citywide_score"`
	UnderservedWards      int     `json:"underserved_wards"`
	ComplaintsResolvedPct float64 `json:"complaints_resolved_pct"`
	AverageSupplyHours    float64 `json:"average_supply_hours"`
}

// ForecastPointDTO is one demand-forecast point.
type ForecastPointDTO struct {
	Timestamp string  `json:"timestamp"`
	DemandML  float64 `json:"demand_ml"`
}

// IncidentDTO represents an incident report.
type IncidentDTO struct {
	ID          string  `json:"id"`
	ZoneID      string  `json:"zone_id"`
	ReportedBy  string  `json:"reported_by"`
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	ReportedAt  string  `json:"reported_at"`
	Status      string  `json:"status"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func toIncidentDTO(i telemetry.Incident) IncidentDTO {
	return IncidentDTO{
		ID:          i.ID,
		ZoneID:      i.ZoneID,
		ReportedBy:  i.ReportedBy,
		Type:        string(i.Type),
		Severity:    i.Severity,
		Description: i.Description,
		ReportedAt:  i.ReportedAt.Format(time.RFC3339),
		Status:      i.Status,
		Latitude:    i.Latitude,
		Longitude:   i.Longitude,
	}
}

// CreateIncidentRequest is a citizen incident submission.
type CreateIncidentRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	WardNumber  int    `json:"ward_number"`
	ZoneID      string `json:"zone_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// PumpScheduleDTO represents a pumping window.
type PumpScheduleDTO struct {
	ID                   string  `json:"id"`
	PumpID               string  `json:"pump_id"`
	ZoneID               string  `json:"zone_id"`
	StartTime            string  `json:"start_time"`
	EndTime              string  `json:"end_time"`
	FlowRateLPS          float64 `json:"flow_rate_lps"`
	Status               string  `json:"status"`
	RecommendationReason string  `json:"recommendation_reason"`
}

func toPumpScheduleDTO(s telemetry.PumpSchedule) PumpScheduleDTO {
	return PumpScheduleDTO{
		ID:                   s.ID,
		PumpID:               s.PumpID,
		ZoneID:               s.ZoneID,
		StartTime:            s.StartTime.Format(time.RFC3339),
		EndTime:              s.EndTime.Format(time.RFC3339),
		FlowRateLPS:          s.FlowRateLPS,
		Status:               s.Status,
		RecommendationReason: s.RecommendationReason,
	}
}

// PumpStationDTO represents a pump station.
type PumpStationDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ConnectedZones []string `json:"connected_zones"`
	Status         string   `json:"status"`
	EnergyUseKW    float64  `json:"energy_use_kw"`
	HealthScore    float64  `json:"health_score"`
}

// ReservoirDTO represents a reservoir.
type ReservoirDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CapacityML     float64  `json:"capacity_ml"`
	CurrentLevelML float64  `json:"current_level_ml"`
	Trend          string   `json:"trend"`
	PumpsConnected []string `json:"pumps_connected"`
}

// InsightsDTO is the network-health summary.
type InsightsDTO struct {
	GeneratedAt      string  `json:"generated_at"`
	PressurePSI      float64 `json:"pressure_psi"`
	EnergyKW         float64 `json:"energy_kw"`
	CitywideFairness float64 `json:"citywide_fairness"`
	UnderservedWards int     `json:"underserved_wards"`
	OpenIncidents    int     `json:"open_incidents"`
	PendingSchedules int     `json:"pending_schedules"`
}
