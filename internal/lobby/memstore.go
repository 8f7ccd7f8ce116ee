// internal/lobby/memstore.go
package lobby

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/letsqueue/letsqueue/internal/models"
)

// MemoryStore is an in-memory Store. The server runs on it when no
// DATABASE_URL is configured (ephemeral dev mode) and the tests use it
// everywhere. A single mutex serializes all mutations, which trivially
// satisfies the atomicity contract of Store.
type MemoryStore struct {
	mu sync.Mutex

	public  map[uuid.UUID]*models.PublicLobby
	private map[uuid.UUID]*models.PrivateLobby
	byCode  map[string]uuid.UUID

	// participants keyed by lobby id, insertion-ordered.
	participants map[uuid.UUID][]models.Participant

	publicArchives  []*models.ArchivedPublicLobbyStats
	privateArchives []*models.ArchivedPrivateLobbyStats
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		public:       make(map[uuid.UUID]*models.PublicLobby),
		private:      make(map[uuid.UUID]*models.PrivateLobby),
		byCode:       make(map[string]uuid.UUID),
		participants: make(map[uuid.UUID][]models.Participant),
	}
}

func (s *MemoryStore) InsertPublicLobby(ctx context.Context, l *models.PublicLobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.public[l.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPublicLobby(ctx context.Context, id uuid.UUID) (*models.PublicLobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.public[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	cp := *l
	cp.ParticipantCount = len(s.participants[id])
	return &cp, nil
}

func (s *MemoryStore) ListPublicLobbies(ctx context.Context, f PublicFilter, now time.Time) ([]*models.PublicLobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PublicLobby
	for id, l := range s.public {
		if l.Status != models.StatusActive || l.IsExpired(now) {
			continue
		}
		if f.Game != "" && string(l.Game) != f.Game {
			continue
		}
		if f.Rank != "" && l.Rank != f.Rank {
			continue
		}
		if f.Vibe != "" && string(l.Vibe) != f.Vibe {
			continue
		}
		if f.MicRequired != nil && l.MicRequired != *f.MicRequired {
			continue
		}
		cp := *l
		cp.ParticipantCount = len(s.participants[id])
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) InsertPrivateLobby(ctx context.Context, l *models.PrivateLobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.private[l.ID] = &cp
	s.byCode[l.LobbyCode] = l.ID
	return nil
}

func (s *MemoryStore) GetPrivateLobby(ctx context.Context, id uuid.UUID) (*models.PrivateLobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.private[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	cp := *l
	cp.ParticipantCount = len(s.participants[id])
	return &cp, nil
}

func (s *MemoryStore) GetPrivateLobbyByCode(ctx context.Context, code string) (*models.PrivateLobby, error) {
	s.mu.Lock()
	id, ok := s.byCode[code]
	s.mu.Unlock()
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return s.GetPrivateLobby(ctx, id)
}

func (s *MemoryStore) ListPrivateLobbiesByCreator(ctx context.Context, creatorToken string, now time.Time) ([]*models.PrivateLobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PrivateLobby
	for id, l := range s.private {
		if l.CreatorToken != creatorToken || l.Status == models.StatusExpired || l.IsExpired(now) {
			continue
		}
		cp := *l
		cp.ParticipantCount = len(s.participants[id])
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) LobbyCodeInUse(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byCode[code]
	return ok, nil
}

// lobbyCapacity resolves capacity and a status setter for either kind.
func (s *MemoryStore) lobbyCapacity(kind models.LobbyKind, lobbyID uuid.UUID) (maxParticipants int, setStatus func(models.LobbyStatus), status models.LobbyStatus, ok bool) {
	switch kind {
	case models.KindPublic:
		l, exists := s.public[lobbyID]
		if !exists {
			return 0, nil, "", false
		}
		return l.MaxParticipants, func(st models.LobbyStatus) { l.Status = st }, l.Status, true
	case models.KindPrivate:
		l, exists := s.private[lobbyID]
		if !exists {
			return 0, nil, "", false
		}
		return l.MaxParticipants, func(st models.LobbyStatus) { l.Status = st }, l.Status, true
	}
	return 0, nil, "", false
}

func (s *MemoryStore) AddParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxParticipants, setStatus, _, ok := s.lobbyCapacity(kind, lobbyID)
	if !ok {
		return ErrLobbyNotFound
	}

	members := s.participants[lobbyID]
	for _, m := range members {
		if m.AnonToken == p.AnonToken {
			return ErrAlreadyJoined
		}
	}
	if len(members) >= maxParticipants {
		return ErrLobbyFull
	}

	s.participants[lobbyID] = append(members, *p)
	if len(members)+1 >= maxParticipants {
		setStatus(models.StatusFull)
	}
	return nil
}

func (s *MemoryStore) RemoveParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, anonToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxParticipants, setStatus, status, ok := s.lobbyCapacity(kind, lobbyID)
	if !ok {
		return ErrLobbyNotFound
	}

	members := s.participants[lobbyID]
	idx := -1
	for i, m := range members {
		if m.AnonToken == anonToken {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotAMember
	}

	s.participants[lobbyID] = append(members[:idx], members[idx+1:]...)
	if status == models.StatusFull && len(members)-1 < maxParticipants {
		setStatus(models.StatusActive)
	}
	return nil
}

func (s *MemoryStore) ListParticipants(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.participants[lobbyID]
	out := make([]models.Participant, len(members))
	copy(out, members)
	return out, nil
}

func (s *MemoryStore) ArchivePublicLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPublicLobbyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.public[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	stats := &models.ArchivedPublicLobbyStats{
		ID:                uuid.New(),
		LobbyID:           l.ID,
		Game:              l.Game,
		Rank:              l.Rank,
		Vibe:              l.Vibe,
		TotalParticipants: len(s.participants[id]),
		CreatedAt:         l.CreatedAt,
		ExpiredAt:         expiredAt,
		MicRequired:       l.MicRequired,
		Region:            l.Region,
	}
	s.publicArchives = append(s.publicArchives, stats)
	delete(s.participants, id)
	delete(s.public, id)
	return stats, nil
}

func (s *MemoryStore) ArchivePrivateLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPrivateLobbyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.private[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	stats := &models.ArchivedPrivateLobbyStats{
		ID:                uuid.New(),
		LobbyID:           l.ID,
		TotalParticipants: len(s.participants[id]),
		CreatedAt:         l.CreatedAt,
		ExpiredAt:         expiredAt,
	}
	s.privateArchives = append(s.privateArchives, stats)
	delete(s.participants, id)
	delete(s.byCode, l.LobbyCode)
	delete(s.private, id)
	return stats, nil
}

func (s *MemoryStore) ListExpiredLobbies(ctx context.Context, kind models.LobbyKind, now time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	switch kind {
	case models.KindPublic:
		for id, l := range s.public {
			if l.IsExpired(now) {
				out = append(out, id)
			}
		}
	case models.KindPrivate:
		for id, l := range s.private {
			if l.IsExpired(now) {
				out = append(out, id)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListArchivedPublicStats(ctx context.Context, limit int) ([]*models.ArchivedPublicLobbyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ArchivedPublicLobbyStats, len(s.publicArchives))
	copy(out, s.publicArchives)
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiredAt.After(out[j].ExpiredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListArchivedPrivateStats(ctx context.Context, limit int) ([]*models.ArchivedPrivateLobbyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ArchivedPrivateLobbyStats, len(s.privateArchives))
	copy(out, s.privateArchives)
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiredAt.After(out[j].ExpiredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
