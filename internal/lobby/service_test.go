// internal/lobby/service_test.go
package lobby

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsqueue/letsqueue/internal/models"
)

// newTestService pins the clock so expiry behavior is deterministic.
func newTestService(t *testing.T) (*Service, *MemoryStore, time.Time) {
	t.Helper()
	store := NewMemoryStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(store, logger)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store, now
}

func validPublicParams() CreatePublicLobbyParams {
	return CreatePublicLobbyParams{
		Game:            "valorant",
		Rank:            "gold2",
		Vibe:            "chill",
		MicRequired:     true,
		Region:          "EU",
		MaxParticipants: 5,
	}
}

func TestCreatePublicLobby(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()

	l, err := svc.CreatePublicLobby(ctx, "creator-token", validPublicParams())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Equal(t, models.StatusActive, l.Status)
	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, now.Add(24*time.Hour), l.ExpiresAt)
	assert.True(t, l.ExpiresAt.After(l.CreatedAt))
}

func TestCreatePublicLobbyAcceptsEveryWhitelistedRank(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for game, ranks := range models.RanksByGame {
		for _, r := range ranks {
			p := validPublicParams()
			p.Game = string(game)
			p.Rank = r.Value
			_, err := svc.CreatePublicLobby(ctx, "tok", p)
			require.NoError(t, err, "game=%s rank=%s", game, r.Value)
		}
	}
}

func TestCreatePublicLobbyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := validPublicParams()
	p.Game = "fortnite"
	_, err := svc.CreatePublicLobby(ctx, "tok", p)
	assert.ErrorIs(t, err, ErrInvalidGame)

	p = validPublicParams()
	p.Rank = "predator" // apex rank, not valorant
	_, err = svc.CreatePublicLobby(ctx, "tok", p)
	assert.ErrorIs(t, err, ErrInvalidRank)

	p = validPublicParams()
	p.Vibe = "angry"
	_, err = svc.CreatePublicLobby(ctx, "tok", p)
	assert.ErrorIs(t, err, ErrInvalidVibe)

	p = validPublicParams()
	p.MaxParticipants = 1
	_, err = svc.CreatePublicLobby(ctx, "tok", p)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	p = validPublicParams()
	p.MaxParticipants = 11
	_, err = svc.CreatePublicLobby(ctx, "tok", p)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	// Zero capacity falls back to the public default.
	p = validPublicParams()
	p.MaxParticipants = 0
	l, err := svc.CreatePublicLobby(ctx, "tok", p)
	require.NoError(t, err)
	assert.Equal(t, models.PublicMaxParticipants, l.MaxParticipants)
}

func TestJoinFlipsStatusToFull(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := validPublicParams()
	p.MaxParticipants = 2
	l, err := svc.CreatePublicLobby(ctx, "creator", p)
	require.NoError(t, err)

	_, err = svc.JoinPublicLobby(ctx, l.ID, "id-one", "Alpha", "")
	require.NoError(t, err)
	fresh, _, err := svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, fresh.Status)
	assert.Equal(t, 1, fresh.ParticipantCount)

	// Filling the last slot flips status.
	_, err = svc.JoinPublicLobby(ctx, l.ID, "id-two", "Bravo", "")
	require.NoError(t, err)
	fresh, _, err = svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFull, fresh.Status)
	assert.Equal(t, 2, fresh.ParticipantCount)

	// A further join is a capacity rejection.
	_, err = svc.JoinPublicLobby(ctx, l.ID, "id-three", "Charlie", "")
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestLeaveReopensFullLobby(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := validPublicParams()
	p.MaxParticipants = 2
	l, _ := svc.CreatePublicLobby(ctx, "creator", p)
	_, err := svc.JoinPublicLobby(ctx, l.ID, "id-one", "", "")
	require.NoError(t, err)
	_, err = svc.JoinPublicLobby(ctx, l.ID, "id-two", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.LeavePublicLobby(ctx, l.ID, "id-two"))

	fresh, _, err := svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, fresh.Status)
	assert.Equal(t, 1, fresh.ParticipantCount)
}

func TestLeaveNotAMember(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	l, _ := svc.CreatePublicLobby(ctx, "creator", validPublicParams())
	err := svc.LeavePublicLobby(ctx, l.ID, "stranger")
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestDuplicateJoinLeavesCountUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	l, _ := svc.CreatePublicLobby(ctx, "creator", validPublicParams())
	_, err := svc.JoinPublicLobby(ctx, l.ID, "same-identity", "", "")
	require.NoError(t, err)

	_, err = svc.JoinPublicLobby(ctx, l.ID, "same-identity", "", "")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	fresh, _, err := svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ParticipantCount)
}

func TestExpiredLobbyGatesReadsAndJoins(t *testing.T) {
	svc, store, now := newTestService(t)
	ctx := context.Background()

	// The row still exists, but its expiry has passed.
	stale := &models.PublicLobby{
		ID:              uuid.New(),
		Game:            models.GameApex,
		Rank:            "gold",
		Vibe:            models.VibeCasual,
		MaxParticipants: 10,
		Status:          models.StatusActive,
		CreatedAt:       now.Add(-25 * time.Hour),
		ExpiresAt:       now.Add(-time.Hour),
	}
	require.NoError(t, store.InsertPublicLobby(ctx, stale))

	_, _, err := svc.GetPublicLobby(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrLobbyExpired)

	_, err = svc.JoinPublicLobby(ctx, stale.ID, "tok", "", "")
	assert.ErrorIs(t, err, ErrLobbyExpired)
}

func TestPrivateLobbyLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Creator auto-joins on creation.
	l, err := svc.CreatePrivateLobby(ctx, "creator-token", 2, "Host")
	require.NoError(t, err)
	assert.Len(t, l.LobbyCode, LobbyCodeLength)
	assert.Equal(t, 1, l.ParticipantCount)
	assert.Equal(t, models.StatusActive, l.Status)

	// Second identity fills the lobby.
	_, joined, err := svc.JoinPrivateLobbyByCode(ctx, l.LobbyCode, "guest-token", "Guest")
	require.NoError(t, err)
	assert.Equal(t, l.ID, joined.ID)
	fresh, members, err := svc.GetPrivateLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFull, fresh.Status)
	assert.Len(t, members, 2)

	// Third identity bounces off the capacity limit.
	_, _, err = svc.JoinPrivateLobbyByCode(ctx, l.LobbyCode, "third-token", "")
	assert.ErrorIs(t, err, ErrLobbyFull)

	// Guest leaves; lobby reopens.
	require.NoError(t, svc.LeavePrivateLobby(ctx, l.ID, "guest-token"))
	fresh, _, err = svc.GetPrivateLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, fresh.Status)
	assert.Equal(t, 1, fresh.ParticipantCount)
}

func TestCreatorCannotLeave(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	l, _ := svc.CreatePrivateLobby(ctx, "creator-token", 3, "")
	err := svc.LeavePrivateLobby(ctx, l.ID, "creator-token")
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)
}

func TestPrivateCapacityBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePrivateLobby(ctx, "tok", 1, "")
	assert.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = svc.CreatePrivateLobby(ctx, "tok", 6, "")
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	l, err := svc.CreatePrivateLobby(ctx, "tok", 0, "")
	require.NoError(t, err)
	assert.Equal(t, models.PrivateMaxParticipants, l.MaxParticipants)
}

func TestDeleteRequiresCreator(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	priv, _ := svc.CreatePrivateLobby(ctx, "creator-token", 3, "")
	err := svc.DeletePrivateLobby(ctx, priv.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotCreator)

	pub, _ := svc.CreatePublicLobby(ctx, "creator-token", validPublicParams())
	err = svc.DeletePublicLobby(ctx, pub.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotCreator)
}

func TestDeleteArchivesThenDestroys(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	l, _ := svc.CreatePrivateLobby(ctx, "creator-token", 3, "Host")
	_, _, err := svc.JoinPrivateLobbyByCode(ctx, l.LobbyCode, "guest", "")
	require.NoError(t, err)

	var published []*models.ArchivedPrivateLobbyStats
	svc.OnPrivateArchived = func(ctx context.Context, stats *models.ArchivedPrivateLobbyStats) {
		published = append(published, stats)
	}

	require.NoError(t, svc.DeletePrivateLobby(ctx, l.ID, "creator-token"))

	// Exactly one archive row; no identity data in it.
	archives, err := store.ListArchivedPrivateStats(ctx, 0)
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, l.ID, archives[0].LobbyID)
	assert.Equal(t, 2, archives[0].TotalParticipants)

	// The lobby and its participants are gone.
	_, _, err = svc.GetPrivateLobby(ctx, l.ID)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
	members, err := store.ListParticipants(ctx, models.KindPrivate, l.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	// The code is free for reuse.
	inUse, err := store.LobbyCodeInUse(ctx, l.LobbyCode)
	require.NoError(t, err)
	assert.False(t, inUse)

	require.Len(t, published, 1)
	assert.Equal(t, l.ID, published[0].LobbyID)

	// A second delete finds nothing; the archive stays single.
	err = svc.DeletePrivateLobby(ctx, l.ID, "creator-token")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
	archives, _ = store.ListArchivedPrivateStats(ctx, 0)
	assert.Len(t, archives, 1)
}

func TestSweepExpired(t *testing.T) {
	svc, store, now := newTestService(t)
	ctx := context.Background()

	live, _ := svc.CreatePublicLobby(ctx, "tok", validPublicParams())

	stalePub := &models.PublicLobby{
		ID: uuid.New(), Game: models.GameLoL, Rank: "gold", Vibe: models.VibeSerious,
		MaxParticipants: 10, Status: models.StatusActive,
		CreatedAt: now.Add(-30 * time.Hour), ExpiresAt: now.Add(-6 * time.Hour),
	}
	require.NoError(t, store.InsertPublicLobby(ctx, stalePub))

	stalePriv := &models.PrivateLobby{
		ID: uuid.New(), CreatorToken: "tok", LobbyCode: "ABCDEFGH",
		MaxParticipants: 5, Status: models.StatusActive,
		CreatedAt: now.Add(-30 * time.Hour), ExpiresAt: now.Add(-6 * time.Hour),
	}
	require.NoError(t, store.InsertPrivateLobby(ctx, stalePriv))

	swept, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)

	// The live lobby survives; the stale ones are archived.
	_, _, err = svc.GetPublicLobby(ctx, live.ID)
	assert.NoError(t, err)
	pubArchives, _ := store.ListArchivedPublicStats(ctx, 0)
	require.Len(t, pubArchives, 1)
	assert.Equal(t, stalePub.ID, pubArchives[0].LobbyID)
	privArchives, _ := store.ListArchivedPrivateStats(ctx, 0)
	require.Len(t, privArchives, 1)
	assert.Equal(t, stalePriv.ID, privArchives[0].LobbyID)
}

func TestListPublicLobbiesFilters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mk := func(game, rank, vibe string, mic bool) *models.PublicLobby {
		p := CreatePublicLobbyParams{Game: game, Rank: rank, Vibe: vibe, MicRequired: mic, MaxParticipants: 5}
		l, err := svc.CreatePublicLobby(ctx, "tok", p)
		require.NoError(t, err)
		return l
	}
	valorant := mk("valorant", "gold2", "chill", true)
	apex := mk("apex", "gold", "serious", false)
	full := mk("lol", "gold", "casual", false)

	// Fill the lol lobby so it drops out of listings.
	for i := 0; i < 5; i++ {
		_, err := svc.JoinPublicLobby(ctx, full.ID, fmt.Sprintf("id-%d", i), "", "")
		require.NoError(t, err)
	}

	all, err := svc.ListPublicLobbies(ctx, PublicFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byGame, err := svc.ListPublicLobbies(ctx, PublicFilter{Game: "valorant"})
	require.NoError(t, err)
	require.Len(t, byGame, 1)
	assert.Equal(t, valorant.ID, byGame[0].ID)

	mic := false
	byMic, err := svc.ListPublicLobbies(ctx, PublicFilter{MicRequired: &mic})
	require.NoError(t, err)
	require.Len(t, byMic, 1)
	assert.Equal(t, apex.ID, byMic[0].ID)
}

func TestListPrivateLobbiesOwnOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mine, _ := svc.CreatePrivateLobby(ctx, "me", 3, "")
	_, err := svc.CreatePrivateLobby(ctx, "someone-else", 3, "")
	require.NoError(t, err)

	lobbies, err := svc.ListPrivateLobbies(ctx, "me")
	require.NoError(t, err)
	require.Len(t, lobbies, 1)
	assert.Equal(t, mine.ID, lobbies[0].ID)
}

func TestRanksForGame(t *testing.T) {
	svc, _, _ := newTestService(t)

	ranks, err := svc.RanksForGame("csgo")
	require.NoError(t, err)
	assert.Equal(t, models.RanksByGame[models.GameCSGO], ranks)

	_, err = svc.RanksForGame("fortnite")
	assert.ErrorIs(t, err, ErrInvalidGame)
}

// TestConcurrentJoinsRespectCapacity is the correctness-under-concurrency
// requirement: joins from distinct identities racing on one lobby must
// never push it past capacity.
func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p := validPublicParams()
	p.MaxParticipants = 5
	l, err := svc.CreatePublicLobby(ctx, "creator", p)
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.JoinPublicLobby(ctx, l.ID, fmt.Sprintf("identity-%d", i), "", "")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrLobbyFull)
			rejected++
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, attempts-5, rejected)

	fresh, _, err := svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.ParticipantCount)
	assert.Equal(t, models.StatusFull, fresh.Status)
}

// TestConcurrentDuplicateJoins races one identity against itself; only
// a single membership may win.
func TestConcurrentDuplicateJoins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	l, err := svc.CreatePublicLobby(ctx, "creator", validPublicParams())
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.JoinPublicLobby(ctx, l.ID, "same-identity", "", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrAlreadyJoined)
		}
	}
	assert.Equal(t, 1, succeeded)

	fresh, _, err := svc.GetPublicLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ParticipantCount)
}
