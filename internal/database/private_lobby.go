package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/models"
)

// InsertPrivateLobby creates a new private lobby row. The lobby_code
// unique constraint backs the create-time uniqueness retry loop.
func (s *Store) InsertPrivateLobby(ctx context.Context, l *models.PrivateLobby) error {
	q := `
	INSERT INTO private_lobbies (
		id, creator_token, lobby_code, max_participants,
		status, created_at, expires_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, q,
		l.ID, l.CreatorToken, l.LobbyCode, l.MaxParticipants,
		l.Status, l.CreatedAt, l.ExpiresAt,
	)
	return err
}

const privateLobbyColumns = `
	l.id, l.creator_token, l.lobby_code, l.max_participants,
	l.status, l.created_at, l.expires_at,
	(SELECT COUNT(*) FROM private_lobby_participants p WHERE p.lobby_id = l.id)
`

func scanPrivateLobby(row pgx.Row) (*models.PrivateLobby, error) {
	var l models.PrivateLobby
	err := row.Scan(
		&l.ID, &l.CreatorToken, &l.LobbyCode, &l.MaxParticipants,
		&l.Status, &l.CreatedAt, &l.ExpiresAt,
		&l.ParticipantCount,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetPrivateLobby fetches a private lobby by id with its live count.
func (s *Store) GetPrivateLobby(ctx context.Context, id uuid.UUID) (*models.PrivateLobby, error) {
	q := `SELECT ` + privateLobbyColumns + ` FROM private_lobbies l WHERE l.id = $1`
	l, err := scanPrivateLobby(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lobby.ErrLobbyNotFound
	}
	return l, err
}

// GetPrivateLobbyByCode resolves a shareable code to its lobby.
func (s *Store) GetPrivateLobbyByCode(ctx context.Context, code string) (*models.PrivateLobby, error) {
	q := `SELECT ` + privateLobbyColumns + ` FROM private_lobbies l WHERE l.lobby_code = $1`
	l, err := scanPrivateLobby(s.pool.QueryRow(ctx, q, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lobby.ErrLobbyNotFound
	}
	return l, err
}

// ListPrivateLobbiesByCreator returns the creator's active, unexpired
// lobbies, newest first.
func (s *Store) ListPrivateLobbiesByCreator(ctx context.Context, creatorToken string, now time.Time) ([]*models.PrivateLobby, error) {
	q := `SELECT ` + privateLobbyColumns + `
	FROM private_lobbies l
	WHERE l.creator_token = $1 AND l.status != 'expired' AND l.expires_at > $2
	ORDER BY l.created_at DESC`
	rows, err := s.pool.Query(ctx, q, creatorToken, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []*models.PrivateLobby
	for rows.Next() {
		l, err := scanPrivateLobby(rows)
		if err != nil {
			return nil, err
		}
		lobbies = append(lobbies, l)
	}
	return lobbies, rows.Err()
}

// LobbyCodeInUse reports whether a private lobby already holds code.
func (s *Store) LobbyCodeInUse(ctx context.Context, code string) (bool, error) {
	var tmp int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM private_lobbies WHERE lobby_code = $1 LIMIT 1`, code).Scan(&tmp)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
