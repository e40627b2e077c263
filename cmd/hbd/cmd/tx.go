package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satoshitonakomito/happybomber/internal/codec"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction helpers",
	}
	cmd.AddCommand(txSignCmd())
	return cmd
}

// txSignCmd prints a signed envelope ready for broadcast_tx.
func txSignCmd() *cobra.Command {
	var (
		keyFile string
		nonce   uint64
	)
	cmd := &cobra.Command{
		Use:   "sign <type> <value-json>",
		Short: "Sign a transaction envelope",
		Example: `  hbd tx sign escrow/create_game '{"gameId":"1","stakeAmount":100}' --key alice.key --nonce 1
  hbd tx sign escrow/end_game '{"gameId":"1","winnerIndex":2}' --key alice.key --nonce 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := readKey(keyFile)
			if err != nil {
				return err
			}
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("value is not valid json")
			}
			env, err := codec.NewSignedEnvelope(priv, args[0], json.RawMessage(args[1]), nonce)
			if err != nil {
				return err
			}
			bz, err := json.Marshal(env)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
	cmd.Flags().StringVar(&keyFile, "key", "", "hex ed25519 seed file")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "signer nonce; must exceed the last accepted one")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("nonce")
	return cmd
}
