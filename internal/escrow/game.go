package escrow

import (
	"encoding/json"
	"fmt"
)

const (
	// MaxPlayers is the fixed number of seats in every game.
	MaxPlayers = 5

	// HouseFeeDivisor yields the 5% house cut: fee = pool / 20.
	HouseFeeDivisor = 20
)

type Status uint8

const (
	StatusWaiting Status = iota
	StatusLive
	StatusFinished
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusLive:
		return "live"
	case StatusFinished:
		return "finished"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

func (s Status) Valid() bool {
	return s <= StatusCancelled
}

func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// Optional is an explicitly tagged present/absent value with a fixed layout.
type Optional[T any] struct {
	Value   T
	Present bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Roster is the fixed-capacity, append-only list of joined players.
// Slots at or beyond Len() are always the zero Address.
type Roster struct {
	slots [MaxPlayers]Address
	n     uint8
}

func (r *Roster) Len() int {
	return int(r.n)
}

func (r *Roster) Full() bool {
	return r.n >= MaxPlayers
}

// At returns the player in slot i if that slot is populated.
func (r *Roster) At(i int) (Address, bool) {
	if i < 0 || i >= int(r.n) {
		return Address{}, false
	}
	return r.slots[i], true
}

// Slot returns the raw slot value, the zero Address when unpopulated.
func (r *Roster) Slot(i int) Address {
	if i < 0 || i >= MaxPlayers {
		return Address{}
	}
	return r.slots[i]
}

func (r *Roster) Index(a Address) int {
	for i := 0; i < int(r.n); i++ {
		if r.slots[i] == a {
			return i
		}
	}
	return -1
}

func (r *Roster) Contains(a Address) bool {
	return r.Index(a) >= 0
}

func (r *Roster) Append(a Address) error {
	if a.IsZero() {
		return fmt.Errorf("roster: zero address")
	}
	if r.Full() {
		return fmt.Errorf("roster: full")
	}
	if r.Contains(a) {
		return fmt.Errorf("roster: duplicate %s", a)
	}
	r.slots[r.n] = a
	r.n++
	return nil
}

// All returns a copy of the populated prefix.
func (r *Roster) All() []Address {
	out := make([]Address, r.n)
	copy(out, r.slots[:r.n])
	return out
}

func (r Roster) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.All())
}

// Game is the persistent record of one game's full state.
type Game struct {
	ID          GameID
	Creator     Address
	StakeAmount uint64
	Players     Roster
	Status      Status
	Seed        [32]byte
	Winner      Optional[Address]
	CreatedAt   int64
	StartedAt   Optional[int64]
	Bump        uint8

	// refunded has bit i set once slot i has been paid back after cancellation.
	refunded uint8
}

func (g *Game) SeedCommitted() bool {
	return g.Seed != [32]byte{}
}

func (g *Game) Refunded(i int) bool {
	if i < 0 || i >= MaxPlayers {
		return false
	}
	return g.refunded&(1<<uint(i)) != 0
}

func (g *Game) markRefunded(i int) {
	g.refunded |= 1 << uint(i)
}

// FullyRefunded reports whether every joined player of a cancelled game has
// been paid back, i.e. the vault is drained.
func (g *Game) FullyRefunded() bool {
	if g.Status != StatusCancelled {
		return false
	}
	for i := 0; i < g.Players.Len(); i++ {
		if !g.Refunded(i) {
			return false
		}
	}
	return true
}

// Pool is the amount the vault must hold while the game is Waiting or Live.
func (g *Game) Pool() uint64 {
	return g.StakeAmount * uint64(g.Players.Len())
}

// Validate checks the record invariants.
func (g *Game) Validate() error {
	if g == nil {
		return fmt.Errorf("game is nil")
	}
	if !g.Status.Valid() {
		return fmt.Errorf("invalid status %d", uint8(g.Status))
	}
	if g.StakeAmount == 0 {
		return fmt.Errorf("stake amount must be > 0")
	}
	if g.Players.n > MaxPlayers {
		return fmt.Errorf("player count %d > %d", g.Players.n, MaxPlayers)
	}
	for i := 0; i < MaxPlayers; i++ {
		p := g.Players.slots[i]
		if i < int(g.Players.n) {
			if p.IsZero() {
				return fmt.Errorf("slot %d populated with zero address", i)
			}
			for j := 0; j < i; j++ {
				if g.Players.slots[j] == p {
					return fmt.Errorf("duplicate player in slots %d and %d", j, i)
				}
			}
		} else if !p.IsZero() {
			return fmt.Errorf("slot %d beyond player count is not empty", i)
		}
	}

	live := g.Status == StatusLive || g.Status == StatusFinished
	if g.SeedCommitted() != live {
		return fmt.Errorf("seed committed=%t inconsistent with status %s", g.SeedCommitted(), g.Status)
	}
	if g.StartedAt.Present != live {
		return fmt.Errorf("started_at present=%t inconsistent with status %s", g.StartedAt.Present, g.Status)
	}
	if live && g.Players.n != MaxPlayers {
		return fmt.Errorf("status %s with %d players", g.Status, g.Players.n)
	}
	if g.Winner.Present != (g.Status == StatusFinished) {
		return fmt.Errorf("winner present=%t inconsistent with status %s", g.Winner.Present, g.Status)
	}
	if g.Winner.Present && !g.Players.Contains(g.Winner.Value) {
		return fmt.Errorf("winner %s is not a player", g.Winner.Value)
	}
	if g.refunded != 0 {
		if g.Status != StatusCancelled {
			return fmt.Errorf("refund flags set on %s game", g.Status)
		}
		if g.refunded>>g.Players.n != 0 {
			return fmt.Errorf("refund flags beyond player count")
		}
	}
	return nil
}

type gameJSON struct {
	ID            GameID            `json:"gameId"`
	Creator       Address           `json:"creator"`
	StakeAmount   uint64            `json:"stakeAmount"`
	PlayerCount   int               `json:"playerCount"`
	Players       Roster            `json:"players"`
	Status        Status            `json:"status"`
	Seed          string            `json:"seed"`
	Winner        Optional[Address] `json:"winner"`
	CreatedAt     int64             `json:"createdAt"`
	StartedAt     Optional[int64]   `json:"startedAt"`
	Bump          uint8             `json:"bump"`
	Refunded      []bool            `json:"refunded,omitempty"`
	FullyRefunded bool              `json:"fullyRefunded,omitempty"`
}

func (g *Game) MarshalJSON() ([]byte, error) {
	v := gameJSON{
		ID:            g.ID,
		Creator:       g.Creator,
		StakeAmount:   g.StakeAmount,
		PlayerCount:   g.Players.Len(),
		Players:       g.Players,
		Status:        g.Status,
		Seed:          bytesToHex(g.Seed[:]),
		Winner:        g.Winner,
		CreatedAt:     g.CreatedAt,
		StartedAt:     g.StartedAt,
		Bump:          g.Bump,
		FullyRefunded: g.FullyRefunded(),
	}
	if g.Status == StatusCancelled {
		v.Refunded = make([]bool, g.Players.Len())
		for i := range v.Refunded {
			v.Refunded[i] = g.Refunded(i)
		}
	}
	return json.Marshal(v)
}
