/*
handlers.go - HTTP handlers for the billing endpoints

PURPOSE:
  Exposes the billing ledger via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  POST   /api/billing/bills/create        Create a bill
  GET    /api/billing/bills/{citizenEmail} Citizen bills + summary
  GET    /api/billing/bills/list/all      All bills (municipal officer)
  POST   /api/billing/payments/process    Pay a bill
  GET    /api/billing/payments/{id}       Payment details
  GET    /api/billing/invoices/{number}   Invoice lookup
  GET    /api/billing/stats/overview      Billing statistics

ARCHITECTURE:
  Handler holds all dependencies (ledgers, stores, token issuer). The
  other endpoint groups live in auth.go, rewards.go and water.go on the
  same Handler.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, already-paid bills
  - 401: Missing or invalid credentials
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - seed.go: Demo dataset loader
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/civista/water-office/auth"
	"github.com/civista/water-office/billing"
	"github.com/civista/water-office/citizens"
	"github.com/civista/water-office/directory"
	"github.com/civista/water-office/ident"
	"github.com/civista/water-office/rewards"
	"github.com/civista/water-office/telemetry"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Billing   *billing.Ledger
	Rewards   *rewards.Ledger
	Citizens  *citizens.Store
	Directory *directory.Store
	Telemetry *telemetry.Store
	Hub       *telemetry.Hub
	Tokens    *auth.TokenIssuer
}

// NewHandler creates a handler over the given stores.
func NewHandler(
	billingLedger *billing.Ledger,
	rewardsLedger *rewards.Ledger,
	citizenStore *citizens.Store,
	dir *directory.Store,
	tel *telemetry.Store,
	hub *telemetry.Hub,
	tokens *auth.TokenIssuer,
) *Handler {
	return &Handler{
		Billing:   billingLedger,
		Rewards:   rewardsLedger,
		Citizens:  citizenStore,
		Directory: dir,
		Telemetry: tel,
		Hub:       hub,
		Tokens:    tokens,
	}
}

// =============================================================================
// BILLING ENDPOINTS
// =============================================================================

// CreateBill creates a new bill for a citizen.
// POST /api/billing/bills/create
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CitizenEmail == "" {
		writeError(w, http.StatusBadRequest, "citizen_email is required", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}
	dueDate, err := time.ParseInLocation(dateLayout, req.DueDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date, expected YYYY-MM-DD", err)
		return
	}

	bill := h.Billing.CreateBill(
		req.CitizenEmail,
		decimal.NewFromFloat(req.Amount),
		dueDate,
		req.Description,
	)
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// GetCitizenBills returns all bills plus the summary for one citizen.
// GET /api/billing/bills/{citizenEmail}
func (h *Handler) GetCitizenBills(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "citizenEmail")

	summary := h.Billing.CitizenSummary(email)
	dtos := make([]BillDTO, len(summary.Bills))
	for i, b := range summary.Bills {
		dtos[i] = toBillDTO(b)
	}

	writeJSON(w, http.StatusOK, CitizenBillStatusDTO{
		Bills:        dtos,
		TotalPending: summary.TotalPending.InexactFloat64(),
		SupplyStatus: string(summary.SupplyStatus),
		OverdueDays:  summary.OverdueDays,
	})
}

// ListAllBills returns every bill for the municipal officer view.
// GET /api/billing/bills/list/all
func (h *Handler) ListAllBills(w http.ResponseWriter, r *http.Request) {
	bills := h.Billing.AllBills()
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ProcessPayment settles a bill and mints an invoice number.
// POST /api/billing/payments/process
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bill, err := h.Billing.Bill(req.BillID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Bill not found", nil)
		return
	}
	if bill.PaymentStatus == billing.PaymentPaid {
		writeError(w, http.StatusBadRequest, "Bill already paid", nil)
		return
	}

	payment, err := h.Billing.ProcessPayment(
		req.BillID,
		decimal.NewFromFloat(req.Amount),
		req.PaymentMethod,
	)
	if err != nil {
		// the bill existed a moment ago; treat any failure here as internal
		writeError(w, http.StatusInternalServerError, "Payment processing failed", err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentResponse{
		Success:       true,
		Message:       "Payment processed successfully",
		BillID:        req.BillID,
		PaymentID:     payment.ID,
		InvoiceNumber: ident.InvoiceNumber(time.Now()),
	})
}

// GetPayment returns one payment record.
// GET /api/billing/payments/{paymentID}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paymentID")

	payment, err := h.Billing.Payment(id)
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotFound) {
			writeError(w, http.StatusNotFound, "Payment not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get payment", err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentDTO{
		ID:              payment.ID,
		BillID:          payment.BillID,
		Amount:          payment.Amount.InexactFloat64(),
		PaidDate:        payment.PaidDate.Format(dateLayout),
		PaymentMethod:   payment.Method,
		ReferenceNumber: payment.ReferenceNumber,
	})
}

// GetInvoice returns invoice details by number. Invoices are generated on
// demand and not stored, so this only confirms the number.
// GET /api/billing/invoices/{invoiceNumber}
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "invoiceNumber")

	writeJSON(w, http.StatusOK, InvoiceDTO{
		InvoiceNumber: number,
		Generated:     true,
		Content:       "Invoice generated and ready for download",
	})
}

// BillingStats returns the municipal billing overview.
// GET /api/billing/stats/overview
func (h *Handler) BillingStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Billing.Stats()
	writeJSON(w, http.StatusOK, BillingStatsDTO{
		TotalBills:     stats.TotalBills,
		PaidBills:      stats.PaidBills,
		PendingBills:   stats.PendingBills,
		TotalAmount:    stats.TotalAmount.InexactFloat64(),
		TotalPaid:      stats.TotalPaid.InexactFloat64(),
		TotalPending:   stats.TotalPending.InexactFloat64(),
		CollectionRate: stats.CollectionRate,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
