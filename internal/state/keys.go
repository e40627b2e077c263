package state

import "github.com/satoshitonakomito/happybomber/internal/escrow"

var (
	// HeightKey stores the last committed block height as big-endian i64.
	HeightKey = []byte{0x01}

	// AppHashKey stores the last committed app hash.
	AppHashKey = []byte{0x02}

	// ParamsKey stores the JSON-encoded genesis parameters.
	ParamsKey = []byte{0x03}

	// AccountKeyPrefix stores balances: AccountKeyPrefix || address.
	AccountKeyPrefix = []byte{0x10}

	// GameKeyPrefix stores fixed-size game records: GameKeyPrefix || game id.
	GameKeyPrefix = []byte{0x20}

	// NonceKeyPrefix stores the last accepted tx nonce: NonceKeyPrefix || signer.
	NonceKeyPrefix = []byte{0x30}
)

func AccountKey(addr escrow.Address) []byte {
	return append(append(make([]byte, 0, 1+len(addr)), AccountKeyPrefix...), addr[:]...)
}

func GameKey(id escrow.GameID) []byte {
	return append(append(make([]byte, 0, 1+len(id)), GameKeyPrefix...), id[:]...)
}

func NonceKey(signer escrow.Address) []byte {
	return append(append(make([]byte, 0, 1+len(signer)), NonceKeyPrefix...), signer[:]...)
}

// PrefixEnd returns the exclusive upper bound for iterating keys with prefix,
// or nil when the prefix is all 0xff.
func PrefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
