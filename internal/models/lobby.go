// internal/models/lobby.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LobbyStatus is the stored lobby state. Only "active" and "full" are
// ever written by join/leave paths; "expired" is a computed predicate
// (IsExpired) that gates reads, never a stored transition.
type LobbyStatus string

const (
	StatusActive  LobbyStatus = "active"
	StatusFull    LobbyStatus = "full"
	StatusExpired LobbyStatus = "expired"
)

// LobbyKind discriminates the two lobby tables.
type LobbyKind string

const (
	KindPublic  LobbyKind = "public"
	KindPrivate LobbyKind = "private"
)

// DefaultLobbyLifetime is how long a lobby lives after creation.
const DefaultLobbyLifetime = 24 * time.Hour

// Capacity bounds per lobby kind.
const (
	PublicMinParticipants  = 2
	PublicMaxParticipants  = 10
	PrivateMinParticipants = 2
	PrivateMaxParticipants = 5
)

// PublicLobby is a browsable lobby for a specific game/rank/vibe.
type PublicLobby struct {
	ID              uuid.UUID   `json:"id"`
	Game            Game        `json:"game"`
	Rank            string      `json:"rank"`
	Vibe            Vibe        `json:"vibe"`
	MicRequired     bool        `json:"mic_required"`
	Region          string      `json:"region"`
	MaxParticipants int         `json:"max_participants"`
	Status          LobbyStatus `json:"status"`
	CreatorToken    string      `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`

	// ParticipantCount is populated on read, not a stored column.
	ParticipantCount int `json:"participant_count"`
}

// DisplayTitle composes a human-readable lobby title from the catalog
// labels. Presentation only.
func (l *PublicLobby) DisplayTitle() string {
	return fmt.Sprintf("%s • %s • %s", GameLabel(l.Game), RankLabel(l.Game, l.Rank), VibeLabel(l.Vibe))
}

// IsFull reports whether count has reached this lobby's capacity.
func (l *PublicLobby) IsFull(count int) bool {
	return count >= l.MaxParticipants
}

// IsExpired reports whether the lobby has passed its expiry at now.
func (l *PublicLobby) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// PrivateLobby is an invite-only lobby reachable by its shareable code.
type PrivateLobby struct {
	ID              uuid.UUID   `json:"id"`
	CreatorToken    string      `json:"-"`
	LobbyCode       string      `json:"lobby_code"`
	MaxParticipants int         `json:"max_participants"`
	Status          LobbyStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`

	ParticipantCount int `json:"participant_count"`
}

// IsFull reports whether count has reached this lobby's capacity.
func (l *PrivateLobby) IsFull(count int) bool {
	return count >= l.MaxParticipants
}

// IsExpired reports whether the lobby has passed its expiry at now.
func (l *PrivateLobby) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
