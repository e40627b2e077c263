package escrow

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// ProgramID identifies this escrow program. It is fixed at build time and
// scopes every derived address.
var ProgramID = Address(sha256.Sum256([]byte("happybomber/escrow/v1")))

const (
	pdaMarker  = "ProgramDerivedAddress"
	maxSeedLen = 32
	maxSeeds   = 16
)

var (
	vaultSeed = []byte("vault")
	gameSeed  = []byte("game")

	errOnCurve = errors.New("derived address lies on the ed25519 curve")
)

// CreateProgramAddress hashes seeds under program and rejects results that are
// valid ed25519 points, so no private key can ever sign for the address.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > maxSeeds {
		return Address{}, fmt.Errorf("too many seeds: %d > %d", len(seeds), maxSeeds)
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLen {
			return Address{}, fmt.Errorf("seed too long: %d > %d", len(s), maxSeedLen)
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if onCurve(out) {
		return Address{}, errOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bump values from 255 downwards and returns the
// first off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		if errors.Is(err, errOnCurve) {
			continue
		}
		if err != nil {
			return Address{}, 0, err
		}
		return addr, uint8(bump), nil
	}
	return Address{}, 0, fmt.Errorf("no viable bump for seeds")
}

// VaultAddress derives the custodial balance address of a game. It is a pure
// function of the game id; callers must not cache the result in records.
func VaultAddress(id GameID) (Address, uint8, error) {
	return FindProgramAddress([][]byte{vaultSeed, id[:]}, ProgramID)
}

// RecordAddress derives the address of the game record itself. Its bump is
// persisted in the record as the addressing nonce.
func RecordAddress(id GameID) (Address, uint8, error) {
	return FindProgramAddress([][]byte{gameSeed, id[:]}, ProgramID)
}

func onCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
