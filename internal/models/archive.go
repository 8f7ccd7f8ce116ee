// internal/models/archive.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedPublicLobbyStats is the permanent, identity-stripped summary
// written when a public lobby is destroyed. It keeps only a copy of the
// lobby id; the lobby and its participants are gone once this exists.
type ArchivedPublicLobbyStats struct {
	ID                uuid.UUID `json:"id"`
	LobbyID           uuid.UUID `json:"lobby_id"`
	Game              Game      `json:"game"`
	Rank              string    `json:"rank"`
	Vibe              Vibe      `json:"vibe"`
	TotalParticipants int       `json:"total_participants"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiredAt         time.Time `json:"expired_at"`
	MicRequired       bool      `json:"mic_required"`
	Region            string    `json:"region"`
}

// DurationMinutes is the lobby's lifetime from creation to archival.
func (a *ArchivedPublicLobbyStats) DurationMinutes() float64 {
	return a.ExpiredAt.Sub(a.CreatedAt).Minutes()
}

// ArchivedPrivateLobbyStats is the private-lobby counterpart. Private
// archives carry no game metadata and, like public ones, no identity
// or nickname data.
type ArchivedPrivateLobbyStats struct {
	ID                uuid.UUID `json:"id"`
	LobbyID           uuid.UUID `json:"lobby_id"`
	TotalParticipants int       `json:"total_participants"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiredAt         time.Time `json:"expired_at"`
}

// DurationMinutes is the lobby's lifetime from creation to archival.
func (a *ArchivedPrivateLobbyStats) DurationMinutes() float64 {
	return a.ExpiredAt.Sub(a.CreatedAt).Minutes()
}
