package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civista/water-office/directory"
	"github.com/civista/water-office/ident"
	"github.com/civista/water-office/rewards"
)

// =============================================================================
// REWARD ENDPOINTS
// =============================================================================

// AddReward grants points to a citizen.
// POST /api/rewards-emergency/rewards/add
func (h *Handler) AddReward(w http.ResponseWriter, r *http.Request) {
	var req RewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	category, err := rewards.ParseCategory(req.RewardType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reward type", err)
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive", nil)
		return
	}

	reward := h.Rewards.AddReward(req.CitizenEmail, category, req.Points, req.Description, req.RelatedID)

	writeJSON(w, http.StatusOK, RewardAddedResponse{
		Success:  true,
		Message:  fmt.Sprintf("Reward of %d points added successfully", reward.Points),
		RewardID: reward.ID,
	})
}

// CitizenRewardStatus returns the reward summary for one citizen.
// GET /api/rewards-emergency/rewards/citizen/{citizenEmail}
func (h *Handler) CitizenRewardStatus(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "citizenEmail")
	summary := h.Rewards.CitizenSummary(email)
	writeJSON(w, http.StatusOK, toRewardStatusDTO(email, summary))
}

// RedeemPoints spends points for a discount coupon. Redemptions are checked
// against the citizen's earned-points total.
// POST /api/rewards-emergency/rewards/redeem
func (h *Handler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	var req RedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	kind, err := rewards.ParseRedemptionKind(req.RedemptionType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid redemption type", err)
		return
	}

	available := h.Rewards.TotalPoints(req.CitizenEmail)
	if ok, message := rewards.ValidateRedemption(available, req.PointsToUse); !ok {
		writeError(w, http.StatusBadRequest, message, nil)
		return
	}

	redemption, err := h.Rewards.RedeemPoints(req.CitizenEmail, kind, req.PointsToUse)
	if err != nil {
		if errors.Is(err, rewards.ErrInsufficientPoints) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to process redemption", err)
		return
	}

	writeJSON(w, http.StatusOK, RedemptionResponse{
		Success:         true,
		Message:         fmt.Sprintf("Redeemed %d points successfully", req.PointsToUse),
		PointsRemaining: available - req.PointsToUse,
		CouponCode:      ident.CouponCode(time.Now()),
		DiscountAmount:  redemption.Value.InexactFloat64(),
	})
}

// RewardStats returns the reward-economy overview.
// GET /api/rewards-emergency/rewards/stats
func (h *Handler) RewardStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Rewards.Stats()

	breakdown := make(map[string]int, len(stats.Breakdown))
	for category, count := range stats.Breakdown {
		breakdown[string(category)] = count
	}

	writeJSON(w, http.StatusOK, RewardStatsDTO{
		TotalPointsIssued:   stats.TotalPointsIssued,
		TotalPointsRedeemed: stats.TotalPointsRedeemed,
		UniqueParticipants:  stats.UniqueParticipants,
		RewardsBreakdown:    breakdown,
	})
}

// =============================================================================
// EMERGENCY CONTACT ENDPOINTS
// =============================================================================

// ListContacts returns all verified emergency contacts.
// GET /api/rewards-emergency/emergency/contacts
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Directory.Verified()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contacts", err)
		return
	}

	dtos := make([]ContactDTO, len(contacts))
	for i, c := range contacts {
		dtos[i] = toContactDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ContactsByType returns contacts of one trade, best rated first.
// GET /api/rewards-emergency/emergency/contacts/type/{contactType}
func (h *Handler) ContactsByType(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "contactType")

	contactType, err := directory.ParseContactType(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid contact type: %s", raw), nil)
		return
	}

	contacts, err := h.Directory.ByType(contactType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contacts", err)
		return
	}

	dtos := make([]ContactDTO, len(contacts))
	for i, c := range contacts {
		dtos[i] = toContactDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UrgentContacts returns the 24/7 emergency responders.
// GET /api/rewards-emergency/emergency/contacts/urgent
func (h *Handler) UrgentContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Directory.Urgent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contacts", err)
		return
	}

	dtos := make([]UrgentContactDTO, len(contacts))
	for i, c := range contacts {
		dtos[i] = UrgentContactDTO{
			ID:           c.ID,
			Name:         c.Name,
			Type:         string(c.Type),
			Phone:        c.Phone,
			Email:        c.Email,
			Location:     c.Location,
			Availability: c.Availability,
			Rating:       c.Rating,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddContact registers a new emergency contact. New contacts start
// unverified until reviewed.
// POST /api/rewards-emergency/emergency/contacts/add
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contactType, err := directory.ParseContactType(req.ContactType)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid contact type: %s", req.ContactType), nil)
		return
	}
	category, err := directory.ParseServiceCategory(req.ServiceCategory)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid service category: %s", req.ServiceCategory), nil)
		return
	}

	contact, err := h.Directory.Add(directory.Contact{
		Name:            req.Name,
		Type:            contactType,
		Phone:           req.Phone,
		Email:           req.Email,
		Location:        req.Location,
		Availability:    req.Availability,
		Category:        category,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add contact", err)
		return
	}

	writeJSON(w, http.StatusOK, ContactAddedResponse{
		Success:   true,
		Message:   "Contact added successfully",
		ContactID: contact.ID,
	})
}

// RequestService dispatches an emergency service request to a contact.
// POST /api/rewards-emergency/emergency/request
func (h *Handler) RequestService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contact, err := h.Directory.Contact(req.ContactID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Contact not found", nil)
		return
	}

	estimated := "As per business hours"
	if strings.Contains(contact.Availability, "24/7") {
		estimated = "15-30 minutes"
	}

	writeJSON(w, http.StatusOK, ServiceRequestResponse{
		Success:       true,
		Message:       fmt.Sprintf("Service request sent to %s", contact.Name),
		RequestID:     serviceRequestID(req.ContactID, req.CitizenEmail),
		ContactName:   contact.Name,
		ContactPhone:  contact.Phone,
		EstimatedTime: estimated,
	})
}

// serviceRequestID derives a short dispatch reference from the contact and
// the requesting citizen.
func serviceRequestID(contactID, citizenEmail string) string {
	prefix := contactID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	h := fnv.New32a()
	h.Write([]byte(citizenEmail))
	return fmt.Sprintf("SRV-%s-%04d", prefix, h.Sum32()%10000)
}
