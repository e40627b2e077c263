package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satoshitonakomito/happybomber/internal/app"
	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

// genesisCmd prints the app_state object to embed in CometBFT's genesis.json.
func genesisCmd() *cobra.Command {
	var (
		house    string
		faucet   bool
		accounts []string
	)
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Print the application genesis state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := buildGenesis(house, faucet, accounts)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
	cmd.Flags().StringVar(&house, "house", "", "house fee recipient address (0x-hex)")
	cmd.Flags().BoolVar(&faucet, "faucet", false, "enable the bank/mint faucet")
	cmd.Flags().StringArrayVar(&accounts, "account", nil, "initial balance as <address>=<amount> (repeatable)")
	_ = cmd.MarkFlagRequired("house")
	return cmd
}

func buildGenesis(house string, faucet bool, accounts []string) (app.Genesis, error) {
	h, err := escrow.ParseAddress(house)
	if err != nil {
		return app.Genesis{}, fmt.Errorf("--house: %w", err)
	}
	g := app.Genesis{House: h, Faucet: faucet}
	for _, raw := range accounts {
		addr, amt, ok := strings.Cut(raw, "=")
		if !ok {
			return app.Genesis{}, fmt.Errorf("--account %q: want <address>=<amount>", raw)
		}
		a, err := escrow.ParseAddress(addr)
		if err != nil {
			return app.Genesis{}, fmt.Errorf("--account %q: %w", raw, err)
		}
		n, err := strconv.ParseUint(amt, 10, 64)
		if err != nil {
			return app.Genesis{}, fmt.Errorf("--account %q: %w", raw, err)
		}
		g.Accounts = append(g.Accounts, app.GenesisAccount{Address: a, Balance: n})
	}
	return g, g.Validate()
}
