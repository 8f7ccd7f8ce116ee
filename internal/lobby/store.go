// internal/lobby/store.go
package lobby

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/letsqueue/letsqueue/internal/models"
)

// PublicFilter narrows a public lobby listing. Zero values mean "no
// filter"; MicRequired is a pointer so false is filterable too.
type PublicFilter struct {
	Game        string
	Rank        string
	Vibe        string
	MicRequired *bool
}

// Store is the durable backing for lobbies, participants and archives.
// Implementations must provide two atomicity guarantees:
//
//   - AddParticipant enforces the capacity limit and the
//     (lobby, identity) uniqueness in one atomic step, so concurrent
//     joins can neither overfill a lobby nor double-join an identity.
//   - ArchivePublicLobby / ArchivePrivateLobby write the archive row,
//     delete all participants and delete the lobby as one transaction;
//     no intermediate state is ever visible to other readers.
//
// Get/List methods populate ParticipantCount on returned lobbies.
type Store interface {
	InsertPublicLobby(ctx context.Context, l *models.PublicLobby) error
	GetPublicLobby(ctx context.Context, id uuid.UUID) (*models.PublicLobby, error)
	ListPublicLobbies(ctx context.Context, f PublicFilter, now time.Time) ([]*models.PublicLobby, error)

	InsertPrivateLobby(ctx context.Context, l *models.PrivateLobby) error
	GetPrivateLobby(ctx context.Context, id uuid.UUID) (*models.PrivateLobby, error)
	GetPrivateLobbyByCode(ctx context.Context, code string) (*models.PrivateLobby, error)
	ListPrivateLobbiesByCreator(ctx context.Context, creatorToken string, now time.Time) ([]*models.PrivateLobby, error)
	LobbyCodeInUse(ctx context.Context, code string) (bool, error)

	// AddParticipant inserts p into the lobby, flipping the lobby to
	// full when the insert fills the last slot. Returns ErrLobbyFull,
	// ErrAlreadyJoined or ErrLobbyNotFound.
	AddParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, p *models.Participant) error

	// RemoveParticipant deletes the membership for anonToken, flipping
	// a full lobby back to active when a slot frees up. Returns
	// ErrNotAMember or ErrLobbyNotFound.
	RemoveParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, anonToken string) error

	ListParticipants(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID) ([]models.Participant, error)

	ArchivePublicLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPublicLobbyStats, error)
	ArchivePrivateLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPrivateLobbyStats, error)

	// ListExpiredLobbies returns ids of lobbies whose expiry has passed
	// at now, up to limit (0 = no limit). Used by the sweeper.
	ListExpiredLobbies(ctx context.Context, kind models.LobbyKind, now time.Time, limit int) ([]uuid.UUID, error)

	ListArchivedPublicStats(ctx context.Context, limit int) ([]*models.ArchivedPublicLobbyStats, error)
	ListArchivedPrivateStats(ctx context.Context, limit int) ([]*models.ArchivedPrivateLobbyStats, error)
}
