package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/models"
)

// InsertPublicLobby creates a new public lobby row.
func (s *Store) InsertPublicLobby(ctx context.Context, l *models.PublicLobby) error {
	q := `
	INSERT INTO public_lobbies (
		id, game, rank, vibe, mic_required, region,
		max_participants, status, creator_token, created_at, expires_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.pool.Exec(ctx, q,
		l.ID, l.Game, l.Rank, l.Vibe, l.MicRequired, l.Region,
		l.MaxParticipants, l.Status, l.CreatorToken, l.CreatedAt, l.ExpiresAt,
	)
	return err
}

const publicLobbyColumns = `
	l.id, l.game, l.rank, l.vibe, l.mic_required, l.region,
	l.max_participants, l.status, l.creator_token, l.created_at, l.expires_at,
	(SELECT COUNT(*) FROM public_lobby_participants p WHERE p.lobby_id = l.id)
`

func scanPublicLobby(row pgx.Row) (*models.PublicLobby, error) {
	var l models.PublicLobby
	err := row.Scan(
		&l.ID, &l.Game, &l.Rank, &l.Vibe, &l.MicRequired, &l.Region,
		&l.MaxParticipants, &l.Status, &l.CreatorToken, &l.CreatedAt, &l.ExpiresAt,
		&l.ParticipantCount,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetPublicLobby fetches a public lobby by id with its live count.
func (s *Store) GetPublicLobby(ctx context.Context, id uuid.UUID) (*models.PublicLobby, error) {
	q := `SELECT ` + publicLobbyColumns + ` FROM public_lobbies l WHERE l.id = $1`
	l, err := scanPublicLobby(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lobby.ErrLobbyNotFound
	}
	return l, err
}

// ListPublicLobbies returns active, unexpired lobbies matching the filter,
// newest first.
func (s *Store) ListPublicLobbies(ctx context.Context, f lobby.PublicFilter, now time.Time) ([]*models.PublicLobby, error) {
	q := `SELECT ` + publicLobbyColumns + `
	FROM public_lobbies l
	WHERE l.status = 'active' AND l.expires_at > $1`
	args := []any{now}

	addArg := func(clause string, v any) {
		args = append(args, v)
		q += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}
	if f.Game != "" {
		addArg("l.game", f.Game)
	}
	if f.Rank != "" {
		addArg("l.rank", f.Rank)
	}
	if f.Vibe != "" {
		addArg("l.vibe", f.Vibe)
	}
	if f.MicRequired != nil {
		addArg("l.mic_required", *f.MicRequired)
	}
	q += ` ORDER BY l.created_at DESC`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []*models.PublicLobby
	for rows.Next() {
		l, err := scanPublicLobby(rows)
		if err != nil {
			return nil, err
		}
		lobbies = append(lobbies, l)
	}
	return lobbies, rows.Err()
}
