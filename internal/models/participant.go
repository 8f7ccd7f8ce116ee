// internal/models/participant.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is the ephemeral membership of one anonymous identity in
// one lobby. The (LobbyID, AnonToken) pair is unique; the store
// enforces it atomically with insertion.
type Participant struct {
	ID      uuid.UUID `json:"id"`
	LobbyID uuid.UUID `json:"-"`

	// AnonToken is the derived identity, never exposed in responses.
	AnonToken string `json:"-"`

	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joined_at"`

	// DeviceFingerprint is an optional extra dedup signal supplied by
	// the client. Stored, never returned.
	DeviceFingerprint string `json:"-"`
}

// MaxNicknameLen bounds participant nicknames.
const MaxNicknameLen = 50
