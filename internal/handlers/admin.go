// internal/handlers/admin.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/letsqueue/letsqueue/internal/auth"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler checks the configured admin password and issues a
// session JWT via cookie. The lobby API itself never requires this;
// only the archive analytics endpoints do.
func (s *Server) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}

	ok, err := auth.VerifyAdminPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNoAdminPassword) {
			writeError(w, http.StatusNotFound, "admin access not configured")
			return
		}
		s.Logger.Errorf("admin password check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "authentication failed")
		return
	}

	token, err := auth.CreateAdminJWT("admin")
	if err != nil {
		s.Logger.Errorf("failed to create admin JWT: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "admin_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// requireAdmin authenticates the admin_token cookie.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	token := extractCookieToken(r.Header.Get("Cookie"), "admin_token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing admin_token")
		return false
	}
	if _, err := auth.AuthenticateAdminJWT(token); err != nil {
		writeError(w, http.StatusForbidden, "invalid token")
		return false
	}
	return true
}

// archiveLimit parses the optional ?limit= query parameter.
func archiveLimit(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

// ListPublicArchivesHandler returns archived public lobby stats.
func (s *Server) ListPublicArchivesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	stats, err := s.Svc.ArchivedPublicStats(r.Context(), archiveLimit(r))
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListPrivateArchivesHandler returns archived private lobby stats.
func (s *Server) ListPrivateArchivesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	stats, err := s.Svc.ArchivedPrivateStats(r.Context(), archiveLimit(r))
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
