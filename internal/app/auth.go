package app

import (
	"crypto/ed25519"
	"strconv"

	"github.com/satoshitonakomito/happybomber/internal/codec"
	"github.com/satoshitonakomito/happybomber/internal/escrow"
	"github.com/satoshitonakomito/happybomber/internal/state"
)

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return codec.ErrUnauthorized.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return codec.ErrUnauthorized.Wrap("missing tx.signer")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return codec.ErrUnauthorized.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

// checkAuth verifies the envelope signature and that its nonce is above the
// signer's last accepted nonce. The signer's public key is its address.
func checkAuth(st *state.State, env codec.TxEnvelope) (escrow.Address, uint64, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return escrow.Address{}, 0, err
	}
	signer, err := escrow.ParseAddress(env.Signer)
	if err != nil {
		return escrow.Address{}, 0, codec.ErrUnauthorized.Wrapf("invalid tx.signer: %v", err)
	}
	nonce, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return escrow.Address{}, 0, codec.ErrInvalidNonce.Wrapf("invalid tx.nonce %q", env.Nonce)
	}

	msg := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(signer[:]), msg, env.Sig) {
		return escrow.Address{}, 0, codec.ErrUnauthorized.Wrap("invalid signature")
	}

	last, ok, err := st.LastNonce(signer)
	if err != nil {
		return escrow.Address{}, 0, err
	}
	if ok && nonce <= last {
		return escrow.Address{}, 0, codec.ErrInvalidNonce.Wrapf("replayed tx.nonce %d (last %d)", nonce, last)
	}
	return signer, nonce, nil
}

// consumeAuth is checkAuth plus recording the nonce.
func consumeAuth(st *state.State, env codec.TxEnvelope) (escrow.Address, error) {
	signer, nonce, err := checkAuth(st, env)
	if err != nil {
		return escrow.Address{}, err
	}
	if err := st.SetLastNonce(signer, nonce); err != nil {
		return escrow.Address{}, err
	}
	return signer, nil
}
