package cmd

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satoshitonakomito/happybomber/internal/app"
	"github.com/satoshitonakomito/happybomber/internal/codec"
	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInit_WritesConfigOnce(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, "init", "--home", home)
	require.NoError(t, err)
	require.Contains(t, out, filepath.Join(home, "config", "hbd.toml"))

	_, err = run(t, "init", "--home", home)
	require.Error(t, err)
}

func TestKeygenAndSign(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "alice.key")
	out, err := run(t, "keygen", keyFile)
	require.NoError(t, err)
	addr, err := escrow.ParseAddress(strings.TrimSpace(out))
	require.NoError(t, err)

	out, err = run(t, "tx", "sign", codec.TypeCreateGame, `{"gameId": "1", "stakeAmount": 100}`, "--key", keyFile, "--nonce", "3")
	require.NoError(t, err)

	env, err := codec.DecodeTxEnvelope([]byte(strings.TrimSpace(out)))
	require.NoError(t, err)
	require.Equal(t, addr.String(), env.Signer)
	require.Equal(t, "3", env.Nonce)
	require.True(t, ed25519.Verify(ed25519.PublicKey(addr[:]), codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer), env.Sig))

	var msg codec.CreateGameTx
	require.NoError(t, codec.DecodeValue(env, &msg))
	require.Equal(t, uint64(100), msg.StakeAmount)

	_, err = run(t, "tx", "sign", codec.TypeJoinGame, `{not json`, "--key", keyFile, "--nonce", "4")
	require.Error(t, err)
}

func TestVault_MatchesDerivation(t *testing.T) {
	out, err := run(t, "vault", "7")
	require.NoError(t, err)

	var got struct {
		Vault     escrow.Address `json:"vault"`
		VaultBump uint8          `json:"vaultBump"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	want, bump, err := escrow.VaultAddress(escrow.GameIDFromUint64(7))
	require.NoError(t, err)
	require.Equal(t, want, got.Vault)
	require.Equal(t, bump, got.VaultBump)

	_, err = run(t, "vault", "not-an-id")
	require.Error(t, err)
}

func TestGenesis_BuildsAppState(t *testing.T) {
	house := escrow.Address{1}
	alice := escrow.Address{2}
	out, err := run(t, "genesis", "--house", house.String(), "--faucet", "--account", alice.String()+"=500")
	require.NoError(t, err)

	g, err := app.ParseGenesis([]byte(out))
	require.NoError(t, err)
	require.Equal(t, house, g.House)
	require.True(t, g.Faucet)
	require.Equal(t, []app.GenesisAccount{{Address: alice, Balance: 500}}, g.Accounts)

	_, err = run(t, "genesis", "--house", house.String(), "--account", "nope")
	require.Error(t, err)
}
