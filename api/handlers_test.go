package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civista/water-office/auth"
	"github.com/civista/water-office/billing"
	"github.com/civista/water-office/citizens"
	"github.com/civista/water-office/directory"
	"github.com/civista/water-office/rewards"
	"github.com/civista/water-office/telemetry"
)

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()

	dir, err := directory.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })
	require.NoError(t, dir.SeedSampleContacts())

	hub := telemetry.NewHub()
	h := NewHandler(
		billing.NewLedger(),
		rewards.NewLedger(),
		citizens.NewStore(),
		dir,
		telemetry.NewStore(),
		hub,
		auth.NewTokenIssuer("test-secret", time.Hour),
	)

	srv := httptest.NewServer(NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func decimalFrom(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// =============================================================================
// BILLING FLOW
// =============================================================================

func TestBillingFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN a freshly created bill
	var bill BillDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/billing/bills/create", CreateBillRequest{
		CitizenEmail: "asha@raipur.gov.in",
		Amount:       1500,
		DueDate:      time.Now().UTC().Add(10 * 24 * time.Hour).Format(dateLayout),
		Description:  "Monthly water bill",
	}, &bill)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Regexp(t, regexp.MustCompile(`^BILL-[0-9A-F]{8}$`), bill.ID)
	assert.Equal(t, "pending", bill.PaymentStatus)
	assert.Equal(t, "active", bill.SupplyStatus)

	// WHEN the bill is paid
	var payment PaymentResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/billing/payments/process", PaymentRequest{
		BillID:        bill.ID,
		Amount:        1500,
		PaymentMethod: "upi",
	}, &payment)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, payment.Success)
	assert.Regexp(t, regexp.MustCompile(`^PAY-[0-9A-F]{8}$`), payment.PaymentID)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d{14}-[0-9A-F]{4}$`), payment.InvoiceNumber)

	// THEN paying again is rejected
	var errResp ErrorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/billing/payments/process", PaymentRequest{
		BillID: bill.ID, Amount: 1500, PaymentMethod: "upi",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Bill already paid", errResp.Error)

	// AND the payment record is retrievable
	var paymentDTO PaymentDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/billing/payments/"+payment.PaymentID, nil, &paymentDTO)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, bill.ID, paymentDTO.BillID)
	assert.Equal(t, "upi", paymentDTO.PaymentMethod)

	// AND the citizen summary reflects the settled bill
	var status CitizenBillStatusDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/billing/bills/asha@raipur.gov.in", nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, status.Bills, 1)
	assert.Equal(t, "paid", status.Bills[0].PaymentStatus)
	assert.Zero(t, status.TotalPending)
	assert.Equal(t, "active", status.SupplyStatus)
}

func TestProcessPaymentUnknownBill(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/billing/payments/process", PaymentRequest{
		BillID: "BILL-DEADBEEF", Amount: 100, PaymentMethod: "card",
	}, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Bill not found", errResp.Error)
}

func TestCreateBillValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/billing/bills/create", CreateBillRequest{
		CitizenEmail: "asha@raipur.gov.in", Amount: 500, DueDate: "next tuesday",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/billing/bills/create", CreateBillRequest{
		CitizenEmail: "asha@raipur.gov.in", Amount: -5, DueDate: "2025-12-01",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBillingStatsOverview(t *testing.T) {
	srv, h := newTestServer(t)
	due := time.Now().UTC().Add(5 * 24 * time.Hour)

	first := h.Billing.CreateBill("a@x.in", decimalFrom(1000), due, "bill 1")
	h.Billing.CreateBill("b@x.in", decimalFrom(3000), due, "bill 2")
	_, err := h.Billing.ProcessPayment(first.ID, decimalFrom(1000), "cash")
	require.NoError(t, err)

	var stats BillingStatsDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/billing/stats/overview", nil, &stats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stats.TotalBills)
	assert.Equal(t, 1, stats.PaidBills)
	assert.InDelta(t, 25.0, stats.CollectionRate, 0.001)
}

// =============================================================================
// REWARDS FLOW
// =============================================================================

func TestRewardsFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	const email = "asha@raipur.gov.in"

	// GIVEN granted rewards crossing the Silver threshold
	for _, grant := range []RewardRequest{
		{CitizenEmail: email, RewardType: "leak_report", Points: 100, Description: "Leak at ward 12"},
		{CitizenEmail: email, RewardType: "referral", Points: 150, Description: "Referred a neighbour"},
		{CitizenEmail: email, RewardType: "on_time_payment", Points: 300, Description: "Six on-time payments"},
	} {
		var added RewardAddedResponse
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/rewards/add", grant, &added)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, added.Success)
		assert.Regexp(t, regexp.MustCompile(`^RWD-[0-9A-F]{8}$`), added.RewardID)
	}

	// THEN the summary places the citizen in Silver
	var summary RewardStatusDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/rewards/citizen/"+email, nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 550, summary.TotalPoints)
	assert.Equal(t, "Silver", summary.CurrentTier)
	assert.InDelta(t, 5.0, summary.DiscountPercentage, 0.001)
	assert.Len(t, summary.RecentRewards, 3)

	// WHEN points are redeemed
	var redeemed RedemptionResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/rewards/redeem", RedemptionRequest{
		CitizenEmail: email, RedemptionType: "water_tax_discount", PointsToUse: 200,
	}, &redeemed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, redeemed.Success)
	assert.Equal(t, 350, redeemed.PointsRemaining)
	assert.InDelta(t, 100.0, redeemed.DiscountAmount, 0.001)
	assert.Regexp(t, regexp.MustCompile(`^RMC-\d{6}-[0-9A-F]{6}$`), redeemed.CouponCode)
}

func TestRedeemInsufficientPoints(t *testing.T) {
	srv, h := newTestServer(t)
	h.Rewards.AddReward("low@x.in", rewards.CategoryParticipation, 25, "Attended ward meeting", "")

	var errResp ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/rewards/redeem", RedemptionRequest{
		CitizenEmail: "low@x.in", RedemptionType: "water_tax_discount", PointsToUse: 200,
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Insufficient points. You have 25 but need 200", errResp.Error)
}

func TestRedeemInvalidPoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/rewards/redeem", RedemptionRequest{
		CitizenEmail: "low@x.in", RedemptionType: "water_tax_discount", PointsToUse: 0,
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid points amount", errResp.Error)
}

// =============================================================================
// EMERGENCY CONTACTS
// =============================================================================

func TestEmergencyContactEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var contacts []ContactDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/emergency/contacts", nil, &contacts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, contacts, 6)

	var plumbers []ContactDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/emergency/contacts/type/plumber", nil, &plumbers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, plumbers)
	for i := 1; i < len(plumbers); i++ {
		assert.GreaterOrEqual(t, plumbers[i-1].Rating, plumbers[i].Rating)
	}

	var errResp ErrorResponse
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/emergency/contacts/type/astrologer", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid contact type: astrologer", errResp.Error)

	var urgent []UrgentContactDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/emergency/contacts/urgent", nil, &urgent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, urgent)
	assert.Equal(t, "RMC Emergency Response", urgent[0].Name)
}

func TestRequestService(t *testing.T) {
	srv, _ := newTestServer(t)

	var contacts []ContactDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/rewards-emergency/emergency/contacts", nil, &contacts)
	require.NotEmpty(t, contacts)

	var dispatch ServiceRequestResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/emergency/request", ServiceRequest{
		ContactID:    contacts[0].ID,
		CitizenEmail: "asha@raipur.gov.in",
		Description:  "Burst pipe in the courtyard",
	}, &dispatch)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dispatch.Success)
	assert.Regexp(t, regexp.MustCompile(`^SRV-.{1,4}-\d{4}$`), dispatch.RequestID)
	assert.Equal(t, contacts[0].Name, dispatch.ContactName)

	var errResp ErrorResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/rewards-emergency/emergency/request", ServiceRequest{
		ContactID: "CONT-00000000", CitizenEmail: "asha@raipur.gov.in",
	}, &errResp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// AUTH FLOW
// =============================================================================

func TestAuthFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	register := RegisterRequest{
		FullName: "Asha Verma",
		Email:    "asha@raipur.gov.in",
		Password: "Str0ng@Pass",
		District: "Raipur",
		Tehsil:   "Raipur",
		Block:    "Block A",
		HouseNo:  "42",
	}

	// GIVEN a successful registration
	var created AuthTokenResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", register, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.AccessToken)
	assert.Equal(t, "bearer", created.TokenType)
	assert.Regexp(t, regexp.MustCompile(`^citizen-\d{4}$`), created.Citizen.ID)

	// THEN a duplicate registration is rejected
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", register, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// AND login round-trips
	var loggedIn AuthTokenResponse
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", LoginRequest{
		Email: register.Email, Password: register.Password,
	}, &loggedIn)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Citizen.ID, loggedIn.Citizen.ID)

	// AND the token authenticates /me
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+loggedIn.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me CitizenDTO
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, register.Email, me.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp ErrorResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", LoginRequest{
		Email: "ghost@x.in", Password: "whatever",
	}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", errResp.Error)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", RegisterRequest{
		FullName: "Weak", Email: "weak@x.in", Password: "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
