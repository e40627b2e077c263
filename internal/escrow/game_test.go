package escrow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoster(t *testing.T) {
	var r Roster
	require.Equal(t, 0, r.Len())
	_, ok := r.At(0)
	require.False(t, ok)

	require.ErrorContains(t, r.Append(Address{}), "zero address")

	ps := players()
	for i, p := range ps {
		require.NoError(t, r.Append(p))
		require.Equal(t, i+1, r.Len())
	}
	require.True(t, r.Full())
	require.ErrorContains(t, r.Append(testAddr("extra")), "full")
	require.Equal(t, 2, r.Index(ps[2]))
	require.Equal(t, -1, r.Index(testAddr("extra")))
	require.Equal(t, Address{}, r.Slot(-1))
	require.Equal(t, Address{}, r.Slot(MaxPlayers))

	var dup Roster
	require.NoError(t, dup.Append(ps[0]))
	require.ErrorContains(t, dup.Append(ps[0]), "duplicate")
	require.Equal(t, Address{}, dup.Slot(1))
}

func TestStatus(t *testing.T) {
	require.Equal(t, "waiting", StatusWaiting.String())
	require.Equal(t, "cancelled", StatusCancelled.String())
	require.False(t, Status(4).Valid())
	require.True(t, StatusFinished.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusLive.Terminal())
}

func TestParseGameID(t *testing.T) {
	id, err := ParseGameID("1")
	require.NoError(t, err)
	require.Equal(t, GameIDFromUint64(1), id)

	id, err = ParseGameID("0x0000000000000001")
	require.NoError(t, err)
	require.Equal(t, GameIDFromUint64(1), id)

	id, err = ParseGameID("00000000000000ff")
	require.NoError(t, err)
	require.Equal(t, GameIDFromUint64(255), id)

	for _, bad := range []string{"", "0x01", "nope", "0xzz00000000000000"} {
		_, err := ParseGameID(bad)
		require.Error(t, err, bad)
	}
}

func TestParseAddress(t *testing.T) {
	a := testAddr("x")
	got, err := ParseAddress(a.String())
	require.NoError(t, err)
	require.Equal(t, a, got)

	_, err = ParseAddress("0x00")
	require.Error(t, err)
}

func TestGame_JSON(t *testing.T) {
	g := finishedGame(t)
	bz, err := json.Marshal(g)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(bz, &v))
	require.Equal(t, "finished", v["status"])
	require.Equal(t, float64(5), v["playerCount"])
	require.Equal(t, players()[3].String(), v["winner"])
	require.Equal(t, g.ID.String(), v["gameId"])
	require.Len(t, v["players"], 5)

	waiting := &Game{ID: g.ID, Creator: creator, StakeAmount: 1}
	bz, err = json.Marshal(waiting)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bz, &v))
	require.Nil(t, v["winner"])
	require.Nil(t, v["startedAt"])
}
