// internal/models/lobby_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle(t *testing.T) {
	l := &PublicLobby{Game: GameValorant, Rank: "gold2", Vibe: VibeChill}
	assert.Equal(t, "Valorant • Gold 2 • Chill", l.DisplayTitle())
}

func TestIsFull(t *testing.T) {
	l := &PublicLobby{MaxParticipants: 3}
	assert.False(t, l.IsFull(2))
	assert.True(t, l.IsFull(3))
	assert.True(t, l.IsFull(4))
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	l := &PrivateLobby{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, l.IsExpired(now))
	// Boundary: exactly at expiry counts as expired.
	assert.True(t, l.IsExpired(now.Add(time.Hour)))
	assert.True(t, l.IsExpired(now.Add(2*time.Hour)))
}

func TestArchiveDuration(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &ArchivedPublicLobbyStats{CreatedAt: created, ExpiredAt: created.Add(90 * time.Minute)}
	assert.InDelta(t, 90.0, a.DurationMinutes(), 0.001)
}
