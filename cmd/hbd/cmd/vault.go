package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

func vaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vault <game-id>",
		Short: "Derive a game's vault and record addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := escrow.ParseGameID(args[0])
			if err != nil {
				return err
			}
			vault, vaultBump, err := escrow.VaultAddress(id)
			if err != nil {
				return err
			}
			record, recordBump, err := escrow.RecordAddress(id)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(map[string]any{
				"gameId":     id,
				"program":    escrow.ProgramID,
				"vault":      vault,
				"vaultBump":  vaultBump,
				"record":     record,
				"recordBump": recordBump,
			}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}
