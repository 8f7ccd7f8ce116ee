// internal/handlers/public_lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/letsqueue/letsqueue/internal/identity"
	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/models"
)

// publicLobbyResponse is the detail representation of a public lobby.
type publicLobbyResponse struct {
	*models.PublicLobby
	DisplayTitle string               `json:"display_title"`
	IsFull       bool                 `json:"is_full"`
	Participants []models.Participant `json:"participants,omitempty"`
}

func newPublicLobbyResponse(l *models.PublicLobby, members []models.Participant) publicLobbyResponse {
	return publicLobbyResponse{
		PublicLobby:  l,
		DisplayTitle: l.DisplayTitle(),
		IsFull:       l.IsFull(l.ParticipantCount),
		Participants: members,
	}
}

// CreatePublicLobbyHandler creates a browsable lobby. The creator is
// recorded (for delete authorization) but not auto-joined.
func (s *Server) CreatePublicLobbyHandler(w http.ResponseWriter, r *http.Request) {
	var params lobby.CreatePublicLobbyParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby payload")
		return
	}

	token := identity.Resolve(r)
	l, err := s.Svc.CreatePublicLobby(r.Context(), token, params)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, newPublicLobbyResponse(l, nil))
}

// ListPublicLobbiesHandler lists active lobbies, filterable by
// game/rank/vibe/mic_required query parameters.
func (s *Server) ListPublicLobbiesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := lobby.PublicFilter{
		Game: q.Get("game"),
		Rank: q.Get("rank"),
		Vibe: q.Get("vibe"),
	}
	if mic := q.Get("mic_required"); mic != "" {
		v := mic == "true"
		f.MicRequired = &v
	}

	lobbies, err := s.Svc.ListPublicLobbies(r.Context(), f)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	out := make([]publicLobbyResponse, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, newPublicLobbyResponse(l, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPublicLobbyHandler returns lobby detail with participants; 410
// once the lobby is past expiry.
func (s *Server) GetPublicLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}
	l, members, err := s.Svc.GetPublicLobby(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, newPublicLobbyResponse(l, members))
}

type joinLobbyRequest struct {
	Nickname          string `json:"nickname"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

// JoinPublicLobbyHandler joins the caller's derived identity into a lobby.
func (s *Server) JoinPublicLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}

	var req joinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "invalid join payload")
		return
	}

	token := identity.Resolve(r)
	p, err := s.Svc.JoinPublicLobby(r.Context(), id, token, req.Nickname, req.DeviceFingerprint)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}

	l, members, err := s.Svc.GetPublicLobby(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Successfully joined lobby",
		"participant_id": p.ID,
		"lobby":          newPublicLobbyResponse(l, members),
	})
}

// LeavePublicLobbyHandler removes the caller's membership.
func (s *Server) LeavePublicLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}

	token := identity.Resolve(r)
	if err := s.Svc.LeavePublicLobby(r.Context(), id, token); err != nil {
		writeServiceError(w, err, false)
		return
	}

	l, members, err := s.Svc.GetPublicLobby(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully left lobby",
		"lobby":   newPublicLobbyResponse(l, members),
	})
}

// DeletePublicLobbyHandler archives and destroys the lobby; creator only.
func (s *Server) DeletePublicLobbyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby id")
		return
	}

	token := identity.Resolve(r)
	if err := s.Svc.DeletePublicLobby(r.Context(), id, token); err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lobby deleted successfully"})
}

// RanksHandler returns the rank whitelist for a game.
// Usage: GET /api/public-lobbies/ranks?game=valorant
func (s *Server) RanksHandler(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		writeError(w, http.StatusBadRequest, "game parameter is required")
		return
	}
	ranks, err := s.Svc.RanksForGame(game)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":  game,
		"ranks": ranks,
	})
}
