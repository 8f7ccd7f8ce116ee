// internal/handlers/private_lobby.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/letsqueue/letsqueue/internal/identity"
	"github.com/letsqueue/letsqueue/internal/models"
)

// privateLobbyResponse is the detail representation of a private lobby.
// is_creator is computed against the requester's derived identity.
type privateLobbyResponse struct {
	*models.PrivateLobby
	IsFull       bool                 `json:"is_full"`
	IsCreator    bool                 `json:"is_creator"`
	Participants []models.Participant `json:"participants,omitempty"`
}

func newPrivateLobbyResponse(l *models.PrivateLobby, members []models.Participant, requesterToken string) privateLobbyResponse {
	return privateLobbyResponse{
		PrivateLobby: l,
		IsFull:       l.IsFull(l.ParticipantCount),
		IsCreator:    l.CreatorToken == requesterToken,
		Participants: members,
	}
}

type createPrivateLobbyRequest struct {
	MaxParticipants int    `json:"max_participants"`
	Nickname        string `json:"nickname"`
}

// CreatePrivateLobbyHandler creates a code-addressed lobby and
// auto-joins the creator.
func (s *Server) CreatePrivateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	var req createPrivateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "invalid lobby payload")
		return
	}

	token := identity.Resolve(r)
	l, err := s.Svc.CreatePrivateLobby(r.Context(), token, req.MaxParticipants, req.Nickname)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}

	fresh, members, err := s.Svc.GetPrivateLobby(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Lobby created successfully",
		"lobby_code": l.LobbyCode,
		"lobby":      newPrivateLobbyResponse(fresh, members, token),
	})
}

// ListPrivateLobbiesHandler lists only the requester's own lobbies.
func (s *Server) ListPrivateLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	token := identity.Resolve(r)
	lobbies, err := s.Svc.ListPrivateLobbies(r.Context(), token)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	out := make([]privateLobbyResponse, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, newPrivateLobbyResponse(l, nil, token))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPrivateLobbyByCodeHandler resolves a shareable code; 410 once expired.
// Usage: GET /api/private-lobbies/by-code/{code}
func (s *Server) GetPrivateLobbyByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))
	l, members, err := s.Svc.GetPrivateLobbyByCode(r.Context(), code)
	if err != nil {
		writeServiceError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, newPrivateLobbyResponse(l, members, identity.Resolve(r)))
}

// JoinPrivateLobbyHandler joins the lobby behind a code.
// Usage: POST /api/private-lobbies/join/{code}
func (s *Server) JoinPrivateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))

	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "invalid join payload")
		return
	}

	token := identity.Resolve(r)
	p, l, err := s.Svc.JoinPrivateLobbyByCode(r.Context(), code, token, req.Nickname)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}

	fresh, members, err := s.Svc.GetPrivateLobby(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Successfully joined lobby",
		"participant_id": p.ID,
		"lobby":          newPrivateLobbyResponse(fresh, members, token),
	})
}

// LeavePrivateLobbyHandler removes the caller's membership; the creator
// is refused and told to delete instead.
func (s *Server) LeavePrivateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}

	token := identity.Resolve(r)
	if err := s.Svc.LeavePrivateLobby(r.Context(), id, token); err != nil {
		writeServiceError(w, err, false)
		return
	}

	l, members, err := s.Svc.GetPrivateLobby(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully left lobby",
		"lobby":   newPrivateLobbyResponse(l, members, token),
	})
}

// DeletePrivateLobbyHandler archives and destroys the lobby; creator only.
func (s *Server) DeletePrivateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}

	token := identity.Resolve(r)
	if err := s.Svc.DeletePrivateLobby(r.Context(), id, token); err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lobby deleted successfully"})
}
