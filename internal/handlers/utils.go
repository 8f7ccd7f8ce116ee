package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/letsqueue/letsqueue/internal/lobby"
)

// writeJSON encodes v with the right content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the {"error": "..."} payload the frontend expects.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps lifecycle errors to HTTP statuses. Expiry is
// 410 only on fetch paths; join/leave treat it as a plain validation
// rejection like the other gate errors.
func writeServiceError(w http.ResponseWriter, err error, expiredIsGone bool) {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		writeError(w, http.StatusNotFound, "lobby not found")
	case errors.Is(err, lobby.ErrNotAMember):
		writeError(w, http.StatusNotFound, "you are not in this lobby")
	case errors.Is(err, lobby.ErrCreatorCannotLeave):
		writeError(w, http.StatusForbidden, "creator cannot leave their own lobby; delete it instead")
	case errors.Is(err, lobby.ErrNotCreator):
		writeError(w, http.StatusForbidden, "only the creator can delete this lobby")
	case errors.Is(err, lobby.ErrLobbyExpired):
		if expiredIsGone {
			writeError(w, http.StatusGone, "this lobby has expired")
		} else {
			writeError(w, http.StatusBadRequest, "lobby has expired")
		}
	case errors.Is(err, lobby.ErrLobbyFull):
		writeError(w, http.StatusBadRequest, "lobby is full")
	case errors.Is(err, lobby.ErrAlreadyJoined):
		writeError(w, http.StatusBadRequest, "you have already joined this lobby")
	case errors.Is(err, lobby.ErrInvalidGame),
		errors.Is(err, lobby.ErrInvalidRank),
		errors.Is(err, lobby.ErrInvalidVibe),
		errors.Is(err, lobby.ErrInvalidCapacity),
		errors.Is(err, lobby.ErrInvalidNickname):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
