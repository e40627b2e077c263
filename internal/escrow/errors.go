package escrow

import errorsmod "cosmossdk.io/errors"

// Codespace scopes the escrow error codes in ABCI results.
const Codespace = "escrow"

// Every rejected rule maps to its own code so callers can tell exactly which
// precondition failed.
var (
	ErrGameNotWaiting   = errorsmod.Register(Codespace, 2, "game is not in waiting status")
	ErrGameFull         = errorsmod.Register(Codespace, 3, "game is full")
	ErrAlreadyJoined    = errorsmod.Register(Codespace, 4, "player already joined")
	ErrNotEnoughPlayers = errorsmod.Register(Codespace, 5, "not enough players to start")
	ErrGameNotLive      = errorsmod.Register(Codespace, 6, "game is not live")
	ErrInvalidWinner    = errorsmod.Register(Codespace, 7, "invalid winner index")
	ErrUnauthorized     = errorsmod.Register(Codespace, 8, "unauthorized")
	ErrGameNotCancelled = errorsmod.Register(Codespace, 9, "game is not cancelled")
	ErrInvalidPlayer    = errorsmod.Register(Codespace, 10, "invalid player index")
	ErrWrongPlayer      = errorsmod.Register(Codespace, 11, "wrong player for refund")
	ErrGameExists       = errorsmod.Register(Codespace, 12, "game id already in use")
	ErrGameNotFound     = errorsmod.Register(Codespace, 13, "game not found")
	ErrInvalidStake     = errorsmod.Register(Codespace, 14, "invalid stake amount")
	ErrAlreadyRefunded  = errorsmod.Register(Codespace, 15, "player already refunded")
	ErrPoolOverflow     = errorsmod.Register(Codespace, 16, "pool overflows uint64")
)
