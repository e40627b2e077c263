package app

import (
	"encoding/json"
	"fmt"

	"github.com/satoshitonakomito/happybomber/internal/escrow"
	"github.com/satoshitonakomito/happybomber/internal/state"
)

type GenesisAccount struct {
	Address escrow.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

// Genesis is the application state carried in InitChain.AppStateBytes.
type Genesis struct {
	House    escrow.Address   `json:"house"`
	Faucet   bool             `json:"faucet"`
	Accounts []GenesisAccount `json:"accounts,omitempty"`
}

func ParseGenesis(bz []byte) (Genesis, error) {
	var g Genesis
	if len(bz) == 0 {
		return g, fmt.Errorf("empty app state")
	}
	if err := json.Unmarshal(bz, &g); err != nil {
		return g, fmt.Errorf("decode app state: %w", err)
	}
	return g, g.Validate()
}

func (g Genesis) Validate() error {
	if g.House.IsZero() {
		return fmt.Errorf("genesis: house address is required")
	}
	seen := map[escrow.Address]bool{}
	for i, acc := range g.Accounts {
		if acc.Address.IsZero() {
			return fmt.Errorf("genesis: account %d has zero address", i)
		}
		if seen[acc.Address] {
			return fmt.Errorf("genesis: duplicate account %s", acc.Address)
		}
		seen[acc.Address] = true
	}
	return nil
}

func (g Genesis) Apply(st *state.State) error {
	if err := st.SetParams(state.Params{House: g.House, Faucet: g.Faucet}); err != nil {
		return err
	}
	for _, acc := range g.Accounts {
		if err := st.Credit(acc.Address, acc.Balance); err != nil {
			return err
		}
	}
	return nil
}
