package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/donbarbero/booking-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	Staff       auth.Staff `json:"staff"`
}

// handleLogin authenticates a staff member and returns a JWT access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.Info("login rejected", "username", req.Username)
		writeUnauthorized(w, "invalid credentials")
		return
	}
	if err != nil {
		s.logger.Error("login failed", "username", req.Username, "error", err)
		writeInternalError(w, "failed to authenticate")
		return
	}

	if s.recorder != nil {
		if err := s.recorder.RecordLogin(r.Context(), sess.Staff.ID, sess.Staff.Username); err != nil {
			s.logger.Warn("recording login failed", "username", sess.Staff.Username, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		ExpiresIn:   int(time.Until(sess.ExpiresAt).Seconds()),
		Staff:       sess.Staff,
	})
}

// handleMe returns the authenticated staff member and their permissions.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}
	id, err := claims.StaffID()
	if err != nil {
		writeUnauthorized(w, "invalid token")
		return
	}

	staff, err := s.staff.GetByID(r.Context(), id)
	if errors.Is(err, auth.ErrStaffNotFound) {
		writeUnauthorized(w, "account no longer exists")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"staff":       staff,
		"permissions": auth.PermissionsForRole(staff.Role),
	})
}
