// internal/lobby/service.go
package lobby

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/letsqueue/letsqueue/internal/models"
)

// Service is the lobby lifecycle manager. All state lives in the
// Store; the service owns validation, status transitions, expiry
// gating and the archive-then-delete sequence.
type Service struct {
	store Store
	log   *logrus.Logger

	// now is swappable for tests.
	now func() time.Time

	// OnPublicArchived / OnPrivateArchived fire after an archive row
	// has been committed and the lobby destroyed. Used to publish
	// archive events to Redis; failures there never undo the archive.
	OnPublicArchived  func(ctx context.Context, stats *models.ArchivedPublicLobbyStats)
	OnPrivateArchived func(ctx context.Context, stats *models.ArchivedPrivateLobbyStats)
}

// NewService builds a Service on the given store.
func NewService(store Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		store: store,
		log:   logger,
		now:   time.Now,
	}
}

// CreatePublicLobbyParams carries the caller-supplied creation fields
// for a public lobby.
type CreatePublicLobbyParams struct {
	Game            string `json:"game"`
	Rank            string `json:"rank"`
	Vibe            string `json:"vibe"`
	MicRequired     bool   `json:"mic_required"`
	Region          string `json:"region"`
	MaxParticipants int    `json:"max_participants"`
}

// CreatePublicLobby validates the rank against the per-game whitelist
// and inserts a fresh active lobby expiring 24h out.
func (s *Service) CreatePublicLobby(ctx context.Context, creatorToken string, p CreatePublicLobbyParams) (*models.PublicLobby, error) {
	game := models.Game(p.Game)
	if !models.ValidGame(game) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGame, p.Game)
	}
	if !models.ValidRank(game, p.Rank) {
		return nil, fmt.Errorf("%w: %q for %q", ErrInvalidRank, p.Rank, p.Game)
	}
	vibe := models.Vibe(p.Vibe)
	if !models.ValidVibe(vibe) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVibe, p.Vibe)
	}
	if p.MaxParticipants == 0 {
		p.MaxParticipants = models.PublicMaxParticipants
	}
	if p.MaxParticipants < models.PublicMinParticipants || p.MaxParticipants > models.PublicMaxParticipants {
		return nil, fmt.Errorf("%w: public lobbies take %d-%d", ErrInvalidCapacity, models.PublicMinParticipants, models.PublicMaxParticipants)
	}

	now := s.now()
	l := &models.PublicLobby{
		ID:              uuid.New(),
		Game:            game,
		Rank:            p.Rank,
		Vibe:            vibe,
		MicRequired:     p.MicRequired,
		Region:          p.Region,
		MaxParticipants: p.MaxParticipants,
		Status:          models.StatusActive,
		CreatorToken:    creatorToken,
		CreatedAt:       now,
		ExpiresAt:       now.Add(models.DefaultLobbyLifetime),
	}
	if err := s.store.InsertPublicLobby(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to insert public lobby: %w", err)
	}
	s.log.WithFields(logrus.Fields{"lobby": l.ID, "game": l.Game, "rank": l.Rank}).Info("public lobby created")
	return l, nil
}

// CreatePrivateLobby creates a code-addressed lobby and auto-joins the
// creator as its first participant.
func (s *Service) CreatePrivateLobby(ctx context.Context, creatorToken string, maxParticipants int, nickname string) (*models.PrivateLobby, error) {
	if maxParticipants == 0 {
		maxParticipants = models.PrivateMaxParticipants
	}
	if maxParticipants < models.PrivateMinParticipants || maxParticipants > models.PrivateMaxParticipants {
		return nil, fmt.Errorf("%w: private lobbies take %d-%d", ErrInvalidCapacity, models.PrivateMinParticipants, models.PrivateMaxParticipants)
	}
	if len(nickname) > models.MaxNicknameLen {
		return nil, ErrInvalidNickname
	}

	// Retry until an unused code comes up. The 32^8 code space makes
	// collisions vanishingly rare, so no retry bound is needed.
	var code string
	for {
		c, err := GenerateLobbyCode()
		if err != nil {
			return nil, err
		}
		inUse, err := s.store.LobbyCodeInUse(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to check lobby code: %w", err)
		}
		if !inUse {
			code = c
			break
		}
	}

	now := s.now()
	l := &models.PrivateLobby{
		ID:              uuid.New(),
		CreatorToken:    creatorToken,
		LobbyCode:       code,
		MaxParticipants: maxParticipants,
		Status:          models.StatusActive,
		CreatedAt:       now,
		ExpiresAt:       now.Add(models.DefaultLobbyLifetime),
	}
	if err := s.store.InsertPrivateLobby(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to insert private lobby: %w", err)
	}

	creator := &models.Participant{
		ID:        uuid.New(),
		LobbyID:   l.ID,
		AnonToken: creatorToken,
		Nickname:  nickname,
		JoinedAt:  now,
	}
	if err := s.store.AddParticipant(ctx, models.KindPrivate, l.ID, creator); err != nil {
		return nil, fmt.Errorf("failed to auto-join creator: %w", err)
	}
	l.ParticipantCount = 1

	s.log.WithFields(logrus.Fields{"lobby": l.ID, "code": l.LobbyCode}).Info("private lobby created")
	return l, nil
}

// GetPublicLobby returns the lobby with its participants. Expired
// lobbies answer ErrLobbyExpired even while the row still exists.
func (s *Service) GetPublicLobby(ctx context.Context, id uuid.UUID) (*models.PublicLobby, []models.Participant, error) {
	l, err := s.store.GetPublicLobby(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l.IsExpired(s.now()) {
		return nil, nil, ErrLobbyExpired
	}
	members, err := s.store.ListParticipants(ctx, models.KindPublic, id)
	if err != nil {
		return nil, nil, err
	}
	return l, members, nil
}

// GetPrivateLobby returns the lobby with its participants, gated on expiry.
func (s *Service) GetPrivateLobby(ctx context.Context, id uuid.UUID) (*models.PrivateLobby, []models.Participant, error) {
	l, err := s.store.GetPrivateLobby(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l.IsExpired(s.now()) {
		return nil, nil, ErrLobbyExpired
	}
	members, err := s.store.ListParticipants(ctx, models.KindPrivate, id)
	if err != nil {
		return nil, nil, err
	}
	return l, members, nil
}

// GetPrivateLobbyByCode resolves a shareable code, gated on expiry.
func (s *Service) GetPrivateLobbyByCode(ctx context.Context, code string) (*models.PrivateLobby, []models.Participant, error) {
	l, err := s.store.GetPrivateLobbyByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return s.GetPrivateLobby(ctx, l.ID)
}

// ListPublicLobbies returns active, unexpired lobbies matching f.
func (s *Service) ListPublicLobbies(ctx context.Context, f PublicFilter) ([]*models.PublicLobby, error) {
	return s.store.ListPublicLobbies(ctx, f, s.now())
}

// ListPrivateLobbies returns the requester's own active lobbies.
func (s *Service) ListPrivateLobbies(ctx context.Context, creatorToken string) ([]*models.PrivateLobby, error) {
	return s.store.ListPrivateLobbiesByCreator(ctx, creatorToken, s.now())
}

// JoinPublicLobby adds the identity to the lobby. The store performs
// the capacity and duplicate checks atomically; the service gates on
// expiry first so stale lobbies reject joins lazily.
func (s *Service) JoinPublicLobby(ctx context.Context, id uuid.UUID, anonToken, nickname, fingerprint string) (*models.Participant, error) {
	if len(nickname) > models.MaxNicknameLen {
		return nil, ErrInvalidNickname
	}
	l, err := s.store.GetPublicLobby(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.IsExpired(s.now()) {
		return nil, ErrLobbyExpired
	}
	p := &models.Participant{
		ID:                uuid.New(),
		LobbyID:           id,
		AnonToken:         anonToken,
		Nickname:          nickname,
		JoinedAt:          s.now(),
		DeviceFingerprint: fingerprint,
	}
	if err := s.store.AddParticipant(ctx, models.KindPublic, id, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"lobby": id, "participant": p.ID}).Info("joined public lobby")
	return p, nil
}

// JoinPrivateLobbyByCode adds the identity to the lobby behind code.
func (s *Service) JoinPrivateLobbyByCode(ctx context.Context, code, anonToken, nickname string) (*models.Participant, *models.PrivateLobby, error) {
	if len(nickname) > models.MaxNicknameLen {
		return nil, nil, ErrInvalidNickname
	}
	l, err := s.store.GetPrivateLobbyByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if l.IsExpired(s.now()) {
		return nil, nil, ErrLobbyExpired
	}
	p := &models.Participant{
		ID:        uuid.New(),
		LobbyID:   l.ID,
		AnonToken: anonToken,
		Nickname:  nickname,
		JoinedAt:  s.now(),
	}
	if err := s.store.AddParticipant(ctx, models.KindPrivate, l.ID, p); err != nil {
		return nil, nil, err
	}
	s.log.WithFields(logrus.Fields{"lobby": l.ID, "participant": p.ID}).Info("joined private lobby")
	return p, l, nil
}

// LeavePublicLobby removes the identity's membership.
func (s *Service) LeavePublicLobby(ctx context.Context, id uuid.UUID, anonToken string) error {
	if _, err := s.store.GetPublicLobby(ctx, id); err != nil {
		return err
	}
	return s.store.RemoveParticipant(ctx, models.KindPublic, id, anonToken)
}

// LeavePrivateLobby removes the identity's membership. The creator can
// never leave their own lobby; they delete it instead.
func (s *Service) LeavePrivateLobby(ctx context.Context, id uuid.UUID, anonToken string) error {
	l, err := s.store.GetPrivateLobby(ctx, id)
	if err != nil {
		return err
	}
	if l.CreatorToken == anonToken {
		return ErrCreatorCannotLeave
	}
	return s.store.RemoveParticipant(ctx, models.KindPrivate, id, anonToken)
}

// DeletePublicLobby authorizes the requester against the lobby's
// creator, then archives and destroys it.
func (s *Service) DeletePublicLobby(ctx context.Context, id uuid.UUID, requesterToken string) error {
	l, err := s.store.GetPublicLobby(ctx, id)
	if err != nil {
		return err
	}
	if l.CreatorToken != requesterToken {
		return ErrNotCreator
	}
	return s.archivePublic(ctx, id)
}

// DeletePrivateLobby authorizes the requester against the lobby's
// creator, then archives and destroys it.
func (s *Service) DeletePrivateLobby(ctx context.Context, id uuid.UUID, requesterToken string) error {
	l, err := s.store.GetPrivateLobby(ctx, id)
	if err != nil {
		return err
	}
	if l.CreatorToken != requesterToken {
		return ErrNotCreator
	}
	return s.archivePrivate(ctx, id)
}

func (s *Service) archivePublic(ctx context.Context, id uuid.UUID) error {
	stats, err := s.store.ArchivePublicLobby(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("failed to archive public lobby %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{
		"lobby":        id,
		"participants": stats.TotalParticipants,
		"duration_min": stats.DurationMinutes(),
	}).Info("public lobby archived and deleted")
	if s.OnPublicArchived != nil {
		s.OnPublicArchived(ctx, stats)
	}
	return nil
}

func (s *Service) archivePrivate(ctx context.Context, id uuid.UUID) error {
	stats, err := s.store.ArchivePrivateLobby(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("failed to archive private lobby %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{
		"lobby":        id,
		"participants": stats.TotalParticipants,
		"duration_min": stats.DurationMinutes(),
	}).Info("private lobby archived and deleted")
	if s.OnPrivateArchived != nil {
		s.OnPrivateArchived(ctx, stats)
	}
	return nil
}

// SweepExpired archives and deletes every lobby past its expiry, both
// kinds, and returns how many were swept. Expired lobbies occupy
// storage until this runs (or until an explicit delete); all read and
// join paths already gate on expiry lazily, so the sweep is purely a
// storage reclamation duty.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	swept := 0

	publicIDs, err := s.store.ListExpiredLobbies(ctx, models.KindPublic, now, 0)
	if err != nil {
		return swept, fmt.Errorf("failed to list expired public lobbies: %w", err)
	}
	for _, id := range publicIDs {
		if err := s.archivePublic(ctx, id); err != nil {
			if errors.Is(err, ErrLobbyNotFound) {
				continue // deleted concurrently
			}
			return swept, err
		}
		swept++
	}

	privateIDs, err := s.store.ListExpiredLobbies(ctx, models.KindPrivate, now, 0)
	if err != nil {
		return swept, fmt.Errorf("failed to list expired private lobbies: %w", err)
	}
	for _, id := range privateIDs {
		if err := s.archivePrivate(ctx, id); err != nil {
			if errors.Is(err, ErrLobbyNotFound) {
				continue
			}
			return swept, err
		}
		swept++
	}
	return swept, nil
}

// RanksForGame returns the whitelist of ranks for a game.
func (s *Service) RanksForGame(game string) ([]models.Rank, error) {
	g := models.Game(game)
	if !models.ValidGame(g) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGame, game)
	}
	return models.RanksByGame[g], nil
}

// ArchivedPublicStats exposes the public archive for analytics.
func (s *Service) ArchivedPublicStats(ctx context.Context, limit int) ([]*models.ArchivedPublicLobbyStats, error) {
	return s.store.ListArchivedPublicStats(ctx, limit)
}

// ArchivedPrivateStats exposes the private archive for analytics.
func (s *Service) ArchivedPrivateStats(ctx context.Context, limit int) ([]*models.ArchivedPrivateLobbyStats, error) {
	return s.store.ListArchivedPrivateStats(ctx, limit)
}
