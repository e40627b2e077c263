package state

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

// Params are the consensus parameters fixed at genesis.
type Params struct {
	House  escrow.Address `json:"house"`
	Faucet bool           `json:"faucet"`
}

// State is the typed view of the keyed store the application executes on. It
// implements escrow.Ledger.
type State struct {
	kv KVStore
}

var _ escrow.Ledger = (*State)(nil)

func New(kv KVStore) *State {
	return &State{kv: kv}
}

// ---- Meta ----

func (s *State) Height() (int64, error) {
	bz, err := s.kv.Get(HeightKey)
	if err != nil || bz == nil {
		return 0, err
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("corrupt height: %d bytes", len(bz))
	}
	return int64(binary.BigEndian.Uint64(bz)), nil
}

func (s *State) SetHeight(h int64) error {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], uint64(h))
	return s.kv.Set(HeightKey, bz[:])
}

func (s *State) AppHash() ([]byte, error) {
	return s.kv.Get(AppHashKey)
}

func (s *State) SetAppHash(h []byte) error {
	return s.kv.Set(AppHashKey, h)
}

func (s *State) Params() (Params, error) {
	var p Params
	bz, err := s.kv.Get(ParamsKey)
	if err != nil || bz == nil {
		return p, err
	}
	if err := json.Unmarshal(bz, &p); err != nil {
		return p, fmt.Errorf("decode params: %w", err)
	}
	return p, nil
}

func (s *State) SetParams(p Params) error {
	bz, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(ParamsKey, bz)
}

// ---- Bank ----

func (s *State) Balance(addr escrow.Address) (uint64, error) {
	bz, err := s.kv.Get(AccountKey(addr))
	if err != nil || bz == nil {
		return 0, err
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("corrupt balance for %s: %d bytes", addr, len(bz))
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (s *State) setBalance(addr escrow.Address, amount uint64) error {
	if amount == 0 {
		return s.kv.Delete(AccountKey(addr))
	}
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], amount)
	return s.kv.Set(AccountKey(addr), bz[:])
}

func (s *State) Credit(addr escrow.Address, amount uint64) error {
	bal, err := s.Balance(addr)
	if err != nil {
		return err
	}
	if bal > ^uint64(0)-amount {
		return ErrBalanceOverflow.Wrapf("%s: have=%d add=%d", addr, bal, amount)
	}
	return s.setBalance(addr, bal+amount)
}

func (s *State) Debit(addr escrow.Address, amount uint64) error {
	bal, err := s.Balance(addr)
	if err != nil {
		return err
	}
	if bal < amount {
		return ErrInsufficientFunds.Wrapf("%s: have=%d need=%d", addr, bal, amount)
	}
	return s.setBalance(addr, bal-amount)
}

// Transfer debits the sum of legs from `from` and credits every leg. All
// resulting balances are computed before anything is written, so a failing
// leg leaves every balance untouched.
func (s *State) Transfer(from escrow.Address, legs ...escrow.Leg) error {
	var total uint64
	for _, l := range legs {
		if l.To.IsZero() {
			return ErrInvalidTransfer.Wrap("zero recipient")
		}
		if total > ^uint64(0)-l.Amount {
			return ErrBalanceOverflow.Wrapf("transfer total from %s", from)
		}
		total += l.Amount
	}

	next := map[escrow.Address]uint64{}
	order := []escrow.Address{from}
	load := func(a escrow.Address) (uint64, error) {
		if v, ok := next[a]; ok {
			return v, nil
		}
		v, err := s.Balance(a)
		if err != nil {
			return 0, err
		}
		next[a] = v
		if a != from {
			order = append(order, a)
		}
		return v, nil
	}

	bal, err := load(from)
	if err != nil {
		return err
	}
	if bal < total {
		return ErrInsufficientFunds.Wrapf("%s: have=%d need=%d", from, bal, total)
	}
	next[from] = bal - total

	for _, l := range legs {
		v, err := load(l.To)
		if err != nil {
			return err
		}
		if v > ^uint64(0)-l.Amount {
			return ErrBalanceOverflow.Wrapf("%s: have=%d add=%d", l.To, v, l.Amount)
		}
		next[l.To] = v + l.Amount
	}

	for _, a := range order {
		if err := s.setBalance(a, next[a]); err != nil {
			return err
		}
	}
	return nil
}

// ---- Games ----

func (s *State) HasGame(id escrow.GameID) (bool, error) {
	bz, err := s.kv.Get(GameKey(id))
	if err != nil {
		return false, err
	}
	return bz != nil, nil
}

func (s *State) GetGame(id escrow.GameID) (*escrow.Game, error) {
	bz, err := s.kv.Get(GameKey(id))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, escrow.ErrGameNotFound.Wrapf("game %s", id)
	}
	g := new(escrow.Game)
	if err := g.UnmarshalBinary(bz); err != nil {
		return nil, errorsmod.Wrapf(err, "decode game %s", id)
	}
	return g, nil
}

func (s *State) SetGame(g *escrow.Game) error {
	bz, err := g.MarshalBinary()
	if err != nil {
		return err
	}
	return s.kv.Set(GameKey(g.ID), bz)
}

// Games visits stored games in id order. Only the durable Store supports
// iteration.
func (s *State) Games(cb func(g *escrow.Game) (stop bool)) error {
	it, ok := s.kv.(*Store)
	if !ok {
		return fmt.Errorf("games iteration requires a committed store")
	}
	return it.Iterate(GameKeyPrefix, func(key, value []byte) (bool, error) {
		g := new(escrow.Game)
		if err := g.UnmarshalBinary(value); err != nil {
			return true, fmt.Errorf("decode game %x: %w", key[len(GameKeyPrefix):], err)
		}
		return cb(g), nil
	})
}

// ---- Nonces ----

// LastNonce returns the highest nonce accepted for signer.
func (s *State) LastNonce(signer escrow.Address) (uint64, bool, error) {
	bz, err := s.kv.Get(NonceKey(signer))
	if err != nil || bz == nil {
		return 0, false, err
	}
	if len(bz) != 8 {
		return 0, false, fmt.Errorf("corrupt nonce for %s", signer)
	}
	return binary.BigEndian.Uint64(bz), true, nil
}

func (s *State) SetLastNonce(signer escrow.Address, n uint64) error {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], n)
	return s.kv.Set(NonceKey(signer), bz[:])
}

// ---- App hash ----

// NextAppHash chains the previous app hash with the block height and the
// sorted change set committed at that height.
func NextAppHash(prev []byte, height int64, changes []Change) []byte {
	h := sha256.New()
	h.Write([]byte("hb/apphash/v0"))
	h.Write(prev)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(height))
	h.Write(buf[:])

	for _, c := range changes {
		binary.BigEndian.PutUint32(buf[:4], uint32(len(c.Key)))
		h.Write(buf[:4])
		h.Write(c.Key)
		if c.Deleted {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		binary.BigEndian.PutUint32(buf[:4], uint32(len(c.Value)))
		h.Write(buf[:4])
		h.Write(c.Value)
	}
	return h.Sum(nil)
}
