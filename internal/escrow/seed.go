package escrow

import (
	"crypto/sha256"
	"encoding/binary"
)

const seedDomain = "happybomber/seed/v1"

// DeriveSeed commits the board seed from values fixed at start time: the game
// id, the block height and the block time. Whoever triggers start can predict
// it; it only guarantees the seed is fixed and public before play.
func DeriveSeed(id GameID, height int64, unix int64) [32]byte {
	var buf [len(seedDomain) + 8 + 8 + 8]byte
	n := copy(buf[:], seedDomain)
	n += copy(buf[n:], id[:])
	binary.LittleEndian.PutUint64(buf[n:], uint64(height))
	binary.LittleEndian.PutUint64(buf[n+8:], uint64(unix))

	seed := sha256.Sum256(buf[:])
	if seed == [32]byte{} {
		seed[31] = 1
	}
	return seed
}

// VerifySeed lets an observer check a committed seed against the block that
// started the game.
func VerifySeed(g *Game, height int64) bool {
	if g == nil || !g.StartedAt.Present || !g.SeedCommitted() {
		return false
	}
	return DeriveSeed(g.ID, height, g.StartedAt.Value) == g.Seed
}
