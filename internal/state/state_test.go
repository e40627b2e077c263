package state

import (
	"bytes"
	"crypto/sha256"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

func addr(name string) escrow.Address {
	return escrow.Address(sha256.Sum256([]byte("addr/" + name)))
}

func TestBank_CreditDebit(t *testing.T) {
	s := New(NewMemStore())
	alice := addr("alice")

	require.NoError(t, s.Credit(alice, 10))
	require.NoError(t, s.Debit(alice, 4))
	bal, err := s.Balance(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(6), bal)

	require.ErrorIs(t, s.Debit(alice, 7), ErrInsufficientFunds)

	require.NoError(t, s.Credit(alice, ^uint64(0)-6))
	require.ErrorIs(t, s.Credit(alice, 1), ErrBalanceOverflow)
}

func TestTransfer_MultiLeg(t *testing.T) {
	s := New(NewMemStore())
	vault, winner, house := addr("vault"), addr("winner"), addr("house")
	require.NoError(t, s.Credit(vault, 500))
	require.NoError(t, s.Credit(winner, 100))

	require.NoError(t, s.Transfer(vault,
		escrow.Leg{To: winner, Amount: 475},
		escrow.Leg{To: house, Amount: 25},
	))

	for a, want := range map[escrow.Address]uint64{vault: 0, winner: 575, house: 25} {
		got, err := s.Balance(a)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestTransfer_FailingLegChangesNothing(t *testing.T) {
	store := NewMemStore()
	s := New(store)
	vault, winner, house := addr("vault"), addr("winner"), addr("house")
	require.NoError(t, s.Credit(vault, 500))
	require.NoError(t, s.Credit(house, ^uint64(0)-10))

	err := s.Transfer(vault,
		escrow.Leg{To: winner, Amount: 475},
		escrow.Leg{To: house, Amount: 25},
	)
	require.ErrorIs(t, err, ErrBalanceOverflow)

	bal, err := s.Balance(vault)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal)
	bal, err = s.Balance(winner)
	require.NoError(t, err)
	require.Zero(t, bal)
}

func TestTransfer_InsufficientAndSelfLegs(t *testing.T) {
	s := New(NewMemStore())
	a, b := addr("a"), addr("b")
	require.NoError(t, s.Credit(a, 10))

	require.ErrorIs(t, s.Transfer(a, escrow.Leg{To: b, Amount: 11}), ErrInsufficientFunds)
	require.ErrorIs(t, s.Transfer(a, escrow.Leg{To: escrow.Address{}, Amount: 1}), ErrInvalidTransfer)

	// A leg back to the sender and repeated recipients aggregate correctly.
	require.NoError(t, s.Transfer(a,
		escrow.Leg{To: a, Amount: 3},
		escrow.Leg{To: b, Amount: 2},
		escrow.Leg{To: b, Amount: 5},
	))
	balA, err := s.Balance(a)
	require.NoError(t, err)
	balB, err := s.Balance(b)
	require.NoError(t, err)
	require.Equal(t, uint64(3), balA)
	require.Equal(t, uint64(7), balB)
}

func TestGames_RoundTripAndIterate(t *testing.T) {
	store := NewMemStore()
	s := New(store)

	_, err := s.GetGame(escrow.GameIDFromUint64(9))
	require.ErrorIs(t, err, escrow.ErrGameNotFound)

	for i := uint64(3); i >= 1; i-- {
		g := &escrow.Game{
			ID:          escrow.GameIDFromUint64(i),
			Creator:     addr("creator"),
			StakeAmount: 100 * i,
			Status:      escrow.StatusWaiting,
			CreatedAt:   1_700_000_000,
		}
		require.NoError(t, s.SetGame(g))
	}

	ok, err := s.HasGame(escrow.GameIDFromUint64(2))
	require.NoError(t, err)
	require.True(t, ok)

	g, err := s.GetGame(escrow.GameIDFromUint64(2))
	require.NoError(t, err)
	require.Equal(t, uint64(200), g.StakeAmount)

	var ids []escrow.GameID
	require.NoError(t, s.Games(func(g *escrow.Game) bool {
		ids = append(ids, g.ID)
		return false
	}))
	require.Equal(t, []escrow.GameID{
		escrow.GameIDFromUint64(1), escrow.GameIDFromUint64(2), escrow.GameIDFromUint64(3),
	}, ids)

	require.Error(t, New(NewCache(store)).Games(func(*escrow.Game) bool { return false }))
}

func TestParamsAndNonces(t *testing.T) {
	s := New(NewMemStore())

	p, err := s.Params()
	require.NoError(t, err)
	require.True(t, p.House.IsZero())

	require.NoError(t, s.SetParams(Params{House: addr("house"), Faucet: true}))
	p, err = s.Params()
	require.NoError(t, err)
	require.Equal(t, addr("house"), p.House)
	require.True(t, p.Faucet)

	_, ok, err := s.LastNonce(addr("a"))
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, s.SetLastNonce(addr("a"), 7))
	n, ok, err := s.LastNonce(addr("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), n)
}

func TestNextAppHash_StableAndSensitive(t *testing.T) {
	mk := func(order []string) []Change {
		c := NewCache(NewMemStore())
		for _, k := range order {
			require.NoError(t, c.Set([]byte(k), []byte("v"+k)))
		}
		return c.Changes()
	}

	h1 := NextAppHash(nil, 7, mk([]string{"b", "a"}))
	h2 := NextAppHash(nil, 7, mk([]string{"a", "b"}))
	require.True(t, bytes.Equal(h1, h2), "expected stable app hash; h1=%x h2=%x", h1, h2)

	require.NotEqual(t, h1, NextAppHash(nil, 8, mk([]string{"a", "b"})))
	require.NotEqual(t, h1, NextAppHash(h1, 7, mk([]string{"a", "b"})))
	require.NotEqual(t, h1, NextAppHash(nil, 7, mk([]string{"a"})))
}

// The engine running on a staging cache over the real store: a full game
// settles 475/25 and only lands in the store once the cache is written.
func TestEngineOnState_SettlesThroughCache(t *testing.T) {
	store := NewMemStore()
	house := addr("house")
	stake := uint64(100)
	var players []escrow.Address
	for _, n := range []string{"p0", "p1", "p2", "p3", "p4"} {
		p := addr(n)
		players = append(players, p)
		require.NoError(t, New(store).Credit(p, stake))
	}

	cache := NewCache(store)
	st := New(cache)
	e := escrow.NewEngine(st, nil, house, escrow.Block{Height: 5, Time: time.Unix(1_700_000_000, 0)}, log.NewNopLogger())

	id := escrow.GameIDFromUint64(1)
	_, err := e.CreateGame(addr("creator"), id, stake)
	require.NoError(t, err)
	for _, p := range players {
		_, err := e.JoinGame(p, id)
		require.NoError(t, err)
	}
	vault, _, err := escrow.VaultAddress(id)
	require.NoError(t, err)
	bal, err := st.Balance(vault)
	require.NoError(t, err)
	require.Equal(t, 5*stake, bal)

	_, err = e.StartGame(players[0], id)
	require.NoError(t, err)
	g, err := e.EndGame(players[0], id, 2)
	require.NoError(t, err)
	require.Equal(t, escrow.StatusFinished, g.Status)

	committed, err := New(store).Balance(players[2])
	require.NoError(t, err)
	require.Equal(t, stake, committed, "store untouched before write")

	require.NoError(t, cache.Write())
	s := New(store)
	for a, want := range map[escrow.Address]uint64{players[2]: 475, house: 25, vault: 0, players[0]: 0} {
		got, err := s.Balance(a)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
