package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/letsqueue/letsqueue/internal/lobby"
	"github.com/letsqueue/letsqueue/internal/models"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type lobbyTables struct {
	lobbies      string
	participants string
}

func tablesFor(kind models.LobbyKind) (lobbyTables, error) {
	switch kind {
	case models.KindPublic:
		return lobbyTables{"public_lobbies", "public_lobby_participants"}, nil
	case models.KindPrivate:
		return lobbyTables{"private_lobbies", "private_lobby_participants"}, nil
	}
	return lobbyTables{}, fmt.Errorf("unknown lobby kind %q", kind)
}

// AddParticipant inserts a membership under a row lock on the lobby, so
// concurrent joins serialize per lobby: the capacity check, the insert
// and the status flip commit together or not at all. A unique-violation
// on (lobby_id, anon_token) maps to ErrAlreadyJoined.
func (s *Store) AddParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, p *models.Participant) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var maxParticipants int
		var status models.LobbyStatus
		q := fmt.Sprintf(`SELECT max_participants, status FROM %s WHERE id = $1 FOR UPDATE`, t.lobbies)
		if err := tx.QueryRow(ctx, q, lobbyID).Scan(&maxParticipants, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return lobby.ErrLobbyNotFound
			}
			return err
		}

		var count int
		q = fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE lobby_id = $1`, t.participants)
		if err := tx.QueryRow(ctx, q, lobbyID).Scan(&count); err != nil {
			return err
		}
		if count >= maxParticipants {
			return lobby.ErrLobbyFull
		}

		if kind == models.KindPublic {
			q = `INSERT INTO public_lobby_participants (id, lobby_id, anon_token, nickname, device_fingerprint, joined_at)
			     VALUES ($1, $2, $3, $4, $5, $6)`
			_, err = tx.Exec(ctx, q, p.ID, lobbyID, p.AnonToken, p.Nickname, p.DeviceFingerprint, p.JoinedAt)
		} else {
			q = `INSERT INTO private_lobby_participants (id, lobby_id, anon_token, nickname, joined_at)
			     VALUES ($1, $2, $3, $4, $5)`
			_, err = tx.Exec(ctx, q, p.ID, lobbyID, p.AnonToken, p.Nickname, p.JoinedAt)
		}
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return lobby.ErrAlreadyJoined
			}
			return err
		}

		if count+1 >= maxParticipants {
			q = fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2`, t.lobbies)
			if _, err := tx.Exec(ctx, q, models.StatusFull, lobbyID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveParticipant deletes a membership under the same per-lobby row
// lock, flipping a full lobby back to active when the slot frees up.
func (s *Store) RemoveParticipant(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID, anonToken string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var maxParticipants int
		var status models.LobbyStatus
		q := fmt.Sprintf(`SELECT max_participants, status FROM %s WHERE id = $1 FOR UPDATE`, t.lobbies)
		if err := tx.QueryRow(ctx, q, lobbyID).Scan(&maxParticipants, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return lobby.ErrLobbyNotFound
			}
			return err
		}

		q = fmt.Sprintf(`DELETE FROM %s WHERE lobby_id = $1 AND anon_token = $2`, t.participants)
		tag, err := tx.Exec(ctx, q, lobbyID, anonToken)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return lobby.ErrNotAMember
		}

		if status == models.StatusFull {
			var count int
			q = fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE lobby_id = $1`, t.participants)
			if err := tx.QueryRow(ctx, q, lobbyID).Scan(&count); err != nil {
				return err
			}
			if count < maxParticipants {
				q = fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2`, t.lobbies)
				if _, err := tx.Exec(ctx, q, models.StatusActive, lobbyID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// ListParticipants returns a lobby's members in join order.
func (s *Store) ListParticipants(ctx context.Context, kind models.LobbyKind, lobbyID uuid.UUID) ([]models.Participant, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if kind == models.KindPublic {
		q := fmt.Sprintf(`SELECT id, lobby_id, anon_token, nickname, device_fingerprint, joined_at FROM %s WHERE lobby_id = $1 ORDER BY joined_at`, t.participants)
		rows, err = s.pool.Query(ctx, q, lobbyID)
	} else {
		q := fmt.Sprintf(`SELECT id, lobby_id, anon_token, nickname, joined_at FROM %s WHERE lobby_id = $1 ORDER BY joined_at`, t.participants)
		rows, err = s.pool.Query(ctx, q, lobbyID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Participant
	for rows.Next() {
		var p models.Participant
		if kind == models.KindPublic {
			err = rows.Scan(&p.ID, &p.LobbyID, &p.AnonToken, &p.Nickname, &p.DeviceFingerprint, &p.JoinedAt)
		} else {
			err = rows.Scan(&p.ID, &p.LobbyID, &p.AnonToken, &p.Nickname, &p.JoinedAt)
		}
		if err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	return members, rows.Err()
}
