package escrow

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Address is a 32-byte account identity. Player, creator and house addresses
// are ed25519 public keys; vault and record addresses are program-derived and
// never lie on the curve.
type Address [32]byte

// GameID is the 8-byte game identifier, unique across the system.
type GameID [8]byte

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	return bytesToHex(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseAddress(s string) (Address, error) {
	b, err := hexToBytes(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}
	if len(b) != len(Address{}) {
		return Address{}, fmt.Errorf("address: got %d bytes want %d", len(b), len(Address{}))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

func (id GameID) String() string {
	return bytesToHex(id[:])
}

func (id GameID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *GameID) UnmarshalText(b []byte) error {
	parsed, err := ParseGameID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseGameID accepts either 16 hex digits (optionally 0x-prefixed) or a
// decimal uint64, which is encoded big-endian.
func ParseGameID(s string) (GameID, error) {
	ss := strings.TrimSpace(s)
	if ss == "" {
		return GameID{}, fmt.Errorf("game id: empty string")
	}
	if !strings.HasPrefix(strings.ToLower(ss), "0x") && len(ss) != 2*len(GameID{}) {
		n, err := strconv.ParseUint(ss, 10, 64)
		if err != nil {
			return GameID{}, fmt.Errorf("game id: %q is neither hex nor decimal", s)
		}
		return GameIDFromUint64(n), nil
	}
	b, err := hexToBytes(ss)
	if err != nil {
		return GameID{}, fmt.Errorf("game id: %w", err)
	}
	if len(b) != len(GameID{}) {
		return GameID{}, fmt.Errorf("game id: got %d bytes want %d", len(b), len(GameID{}))
	}
	var id GameID
	copy(id[:], b)
	return id, nil
}

func GameIDFromUint64(n uint64) GameID {
	var id GameID
	binary.BigEndian.PutUint64(id[:], n)
	return id
}

func hexToBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("hex: empty string")
	}
	ss := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(ss)%2 != 0 {
		return nil, fmt.Errorf("hex: odd length")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return b, nil
}

func bytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
