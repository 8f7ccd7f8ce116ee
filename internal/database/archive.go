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

// ArchivePublicLobby runs the archive-then-delete sequence as one
// transaction: write the identity-stripped stats row, delete the
// participants, delete the lobby. Readers either see the live lobby or
// the archive, never both and never neither.
func (s *Store) ArchivePublicLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPublicLobbyStats, error) {
	var stats *models.ArchivedPublicLobbyStats
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var l models.PublicLobby
		q := `SELECT id, game, rank, vibe, mic_required, region, created_at
		      FROM public_lobbies WHERE id = $1 FOR UPDATE`
		err := tx.QueryRow(ctx, q, id).Scan(&l.ID, &l.Game, &l.Rank, &l.Vibe, &l.MicRequired, &l.Region, &l.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return lobby.ErrLobbyNotFound
		}
		if err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM public_lobby_participants WHERE lobby_id = $1`, id).Scan(&count); err != nil {
			return err
		}

		a := &models.ArchivedPublicLobbyStats{
			ID:                uuid.New(),
			LobbyID:           l.ID,
			Game:              l.Game,
			Rank:              l.Rank,
			Vibe:              l.Vibe,
			TotalParticipants: count,
			CreatedAt:         l.CreatedAt,
			ExpiredAt:         expiredAt,
			MicRequired:       l.MicRequired,
			Region:            l.Region,
		}
		q = `INSERT INTO archived_public_lobby_stats
		     (id, lobby_id, game, rank, vibe, total_participants, created_at, expired_at, mic_required, region)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		if _, err := tx.Exec(ctx, q, a.ID, a.LobbyID, a.Game, a.Rank, a.Vibe, a.TotalParticipants, a.CreatedAt, a.ExpiredAt, a.MicRequired, a.Region); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM public_lobby_participants WHERE lobby_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM public_lobbies WHERE id = $1`, id); err != nil {
			return err
		}
		stats = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ArchivePrivateLobby is the private-lobby archive-then-delete, same
// transactional shape as the public one.
func (s *Store) ArchivePrivateLobby(ctx context.Context, id uuid.UUID, expiredAt time.Time) (*models.ArchivedPrivateLobbyStats, error) {
	var stats *models.ArchivedPrivateLobbyStats
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var createdAt time.Time
		q := `SELECT created_at FROM private_lobbies WHERE id = $1 FOR UPDATE`
		err := tx.QueryRow(ctx, q, id).Scan(&createdAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return lobby.ErrLobbyNotFound
		}
		if err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM private_lobby_participants WHERE lobby_id = $1`, id).Scan(&count); err != nil {
			return err
		}

		a := &models.ArchivedPrivateLobbyStats{
			ID:                uuid.New(),
			LobbyID:           id,
			TotalParticipants: count,
			CreatedAt:         createdAt,
			ExpiredAt:         expiredAt,
		}
		q = `INSERT INTO archived_private_lobby_stats
		     (id, lobby_id, total_participants, created_at, expired_at)
		     VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, q, a.ID, a.LobbyID, a.TotalParticipants, a.CreatedAt, a.ExpiredAt); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM private_lobby_participants WHERE lobby_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM private_lobbies WHERE id = $1`, id); err != nil {
			return err
		}
		stats = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListExpiredLobbies returns ids of lobbies past expiry at now.
func (s *Store) ListExpiredLobbies(ctx context.Context, kind models.LobbyKind, now time.Time, limit int) ([]uuid.UUID, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id FROM %s WHERE expires_at <= $1 ORDER BY expires_at`, t.lobbies)
	args := []any{now}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListArchivedPublicStats returns archived public lobby summaries,
// most recently expired first.
func (s *Store) ListArchivedPublicStats(ctx context.Context, limit int) ([]*models.ArchivedPublicLobbyStats, error) {
	q := `SELECT id, lobby_id, game, rank, vibe, total_participants, created_at, expired_at, mic_required, region
	      FROM archived_public_lobby_stats ORDER BY expired_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ArchivedPublicLobbyStats
	for rows.Next() {
		var a models.ArchivedPublicLobbyStats
		if err := rows.Scan(&a.ID, &a.LobbyID, &a.Game, &a.Rank, &a.Vibe, &a.TotalParticipants, &a.CreatedAt, &a.ExpiredAt, &a.MicRequired, &a.Region); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// ListArchivedPrivateStats returns archived private lobby summaries,
// most recently expired first.
func (s *Store) ListArchivedPrivateStats(ctx context.Context, limit int) ([]*models.ArchivedPrivateLobbyStats, error) {
	q := `SELECT id, lobby_id, total_participants, created_at, expired_at
	      FROM archived_private_lobby_stats ORDER BY expired_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ArchivedPrivateLobbyStats
	for rows.Next() {
		var a models.ArchivedPrivateLobbyStats
		if err := rows.Scan(&a.ID, &a.LobbyID, &a.TotalParticipants, &a.CreatedAt, &a.ExpiredAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
