package escrow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVaultAddress_DeterministicAndOffCurve(t *testing.T) {
	id := GameIDFromUint64(1)
	a1, b1, err := VaultAddress(id)
	require.NoError(t, err)
	a2, b2, err := VaultAddress(id)
	require.NoError(t, err)
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.False(t, onCurve(a1))

	other, _, err := VaultAddress(GameIDFromUint64(2))
	require.NoError(t, err)
	require.NotEqual(t, a1, other)

	rec, _, err := RecordAddress(id)
	require.NoError(t, err)
	require.NotEqual(t, a1, rec)
}

func TestFindProgramAddress_MatchesCreate(t *testing.T) {
	for n := uint64(0); n < 32; n++ {
		id := GameIDFromUint64(n)
		addr, bump, err := VaultAddress(id)
		require.NoError(t, err)
		again, err := CreateProgramAddress([][]byte{vaultSeed, id[:], {bump}}, ProgramID)
		require.NoError(t, err)
		require.Equal(t, addr, again)
	}
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{make([]byte, maxSeedLen+1)}, ProgramID)
	require.ErrorContains(t, err, "seed too long")

	seeds := make([][]byte, maxSeeds+1)
	_, err = CreateProgramAddress(seeds, ProgramID)
	require.ErrorContains(t, err, "too many seeds")
}

func TestFindProgramAddress_DoesNotMutateSeeds(t *testing.T) {
	seeds := make([][]byte, 2, 3)
	seeds[0], seeds[1] = vaultSeed, []byte{1}
	spare := seeds[:3]
	spare[2] = []byte("keep")

	_, _, err := FindProgramAddress(seeds, ProgramID)
	require.NoError(t, err)
	require.Equal(t, []byte("keep"), spare[2])
}
