// internal/lobby/errors.go
package lobby

import "errors"

// Terminal, per-request errors. None of these are retried internally;
// handlers map them straight to HTTP statuses.
var (
	ErrLobbyNotFound      = errors.New("lobby not found")
	ErrLobbyFull          = errors.New("lobby is full")
	ErrLobbyExpired       = errors.New("lobby has expired")
	ErrAlreadyJoined      = errors.New("already joined this lobby")
	ErrNotAMember         = errors.New("not a member of this lobby")
	ErrCreatorCannotLeave = errors.New("creator cannot leave their own lobby; delete it instead")
	ErrNotCreator         = errors.New("only the creator can delete this lobby")

	ErrInvalidGame     = errors.New("invalid game")
	ErrInvalidRank     = errors.New("invalid rank for game")
	ErrInvalidVibe     = errors.New("invalid vibe")
	ErrInvalidCapacity = errors.New("max participants out of range")
	ErrInvalidNickname = errors.New("nickname too long")
)
