package escrow

import (
	"encoding/binary"
	"fmt"
)

const recordVersion = 1

// RecordSize is the fixed encoded size of a Game:
// version | id | creator | stake | count | players | status | seed |
// winner tag+value | created_at | started tag+value | bump | refunded mask.
const RecordSize = 1 + 8 + 32 + 8 + 1 + MaxPlayers*32 + 1 + 32 + 1 + 32 + 8 + 1 + 8 + 1 + 1

func (g *Game) MarshalBinary() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("encode game: %w", err)
	}
	out := make([]byte, RecordSize)
	w := out

	w[0] = recordVersion
	w = w[1:]
	w = w[copy(w, g.ID[:]):]
	w = w[copy(w, g.Creator[:]):]
	binary.LittleEndian.PutUint64(w, g.StakeAmount)
	w = w[8:]
	w[0] = g.Players.n
	w = w[1:]
	for i := 0; i < MaxPlayers; i++ {
		w = w[copy(w, g.Players.slots[i][:]):]
	}
	w[0] = uint8(g.Status)
	w = w[1:]
	w = w[copy(w, g.Seed[:]):]
	w[0] = boolByte(g.Winner.Present)
	w = w[1:]
	w = w[copy(w, g.Winner.Value[:]):]
	binary.LittleEndian.PutUint64(w, uint64(g.CreatedAt))
	w = w[8:]
	w[0] = boolByte(g.StartedAt.Present)
	binary.LittleEndian.PutUint64(w[1:], uint64(g.StartedAt.Value))
	w = w[9:]
	w[0] = g.Bump
	w[1] = g.refunded
	return out, nil
}

func (g *Game) UnmarshalBinary(b []byte) error {
	if len(b) != RecordSize {
		return fmt.Errorf("decode game: got %d bytes want %d", len(b), RecordSize)
	}
	if b[0] != recordVersion {
		return fmt.Errorf("decode game: unsupported version %d", b[0])
	}
	var out Game
	r := b[1:]
	r = r[copy(out.ID[:], r):]
	r = r[copy(out.Creator[:], r):]
	out.StakeAmount = binary.LittleEndian.Uint64(r)
	r = r[8:]
	out.Players.n = r[0]
	r = r[1:]
	if out.Players.n > MaxPlayers {
		return fmt.Errorf("decode game: player count %d > %d", out.Players.n, MaxPlayers)
	}
	for i := 0; i < MaxPlayers; i++ {
		r = r[copy(out.Players.slots[i][:], r):]
	}
	out.Status = Status(r[0])
	r = r[1:]
	r = r[copy(out.Seed[:], r):]
	winnerTag, err := byteBool(r[0], "winner")
	if err != nil {
		return err
	}
	r = r[1:]
	out.Winner.Present = winnerTag
	r = r[copy(out.Winner.Value[:], r):]
	if !winnerTag && !out.Winner.Value.IsZero() {
		return fmt.Errorf("decode game: absent winner with non-zero payload")
	}
	out.CreatedAt = int64(binary.LittleEndian.Uint64(r))
	r = r[8:]
	startedTag, err := byteBool(r[0], "started_at")
	if err != nil {
		return err
	}
	out.StartedAt.Present = startedTag
	out.StartedAt.Value = int64(binary.LittleEndian.Uint64(r[1:]))
	if !startedTag && out.StartedAt.Value != 0 {
		return fmt.Errorf("decode game: absent started_at with non-zero payload")
	}
	r = r[9:]
	out.Bump = r[0]
	out.refunded = r[1]

	if err := out.Validate(); err != nil {
		return fmt.Errorf("decode game: %w", err)
	}
	*g = out
	return nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func byteBool(b byte, field string) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("decode game: invalid %s tag %d", field, b)
	}
}
