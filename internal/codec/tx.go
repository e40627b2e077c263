package codec

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"strconv"

	"github.com/satoshitonakomito/happybomber/internal/escrow"
)

// Transaction types.
const (
	TypeCreateGame   = "escrow/create_game"
	TypeJoinGame     = "escrow/join_game"
	TypeStartGame    = "escrow/start_game"
	TypeEndGame      = "escrow/end_game"
	TypeCancelGame   = "escrow/cancel_game"
	TypeRefundPlayer = "escrow/refund_player"
	TypeBankSend     = "bank/send"
	TypeBankMint     = "bank/mint"
)

// SignDomain prefixes every signed message.
const SignDomain = "hb/tx/v0"

// TxEnvelope is the transaction container. CometBFT transactions are opaque
// bytes; they carry this envelope as JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce is a decimal uint64 that must strictly increase per signer.
	// Signer is the caller's ed25519 public key in 0x-hex. Sig is an ed25519
	// signature over SignBytes.
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, ErrTxDecode.Wrapf("invalid tx json: %v", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, ErrTxDecode.Wrap("missing tx.type")
	}
	return env, nil
}

// DecodeValue unmarshals the envelope body into v, rejecting unknown fields.
func DecodeValue(env TxEnvelope, v any) error {
	if len(env.Value) == 0 {
		return ErrTxDecode.Wrapf("%s: missing value", env.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(env.Value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrTxDecode.Wrapf("%s: %v", env.Type, err)
	}
	return nil
}

// SignBytes is DOMAIN 0 type 0 nonce 0 signer 0 sha256(value).
func SignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(SignDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, SignDomain...)
	out = append(out, 0)
	out = append(out, typ...)
	out = append(out, 0)
	out = append(out, nonce...)
	out = append(out, 0)
	out = append(out, signer...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

// NewSignedEnvelope encodes value, signs it with priv and returns the
// envelope ready for broadcast.
func NewSignedEnvelope(priv ed25519.PrivateKey, typ string, value any, nonce uint64) (TxEnvelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return TxEnvelope{}, err
	}
	signer := AddressOf(priv.Public().(ed25519.PublicKey)).String()
	n := strconv.FormatUint(nonce, 10)
	return TxEnvelope{
		Type:   typ,
		Value:  raw,
		Nonce:  n,
		Signer: signer,
		Sig:    ed25519.Sign(priv, SignBytes(typ, raw, n, signer)),
	}, nil
}

// AddressOf returns the account address of an ed25519 public key.
func AddressOf(pub ed25519.PublicKey) escrow.Address {
	var a escrow.Address
	copy(a[:], pub)
	return a
}

// ---- Escrow ----

type CreateGameTx struct {
	GameID      escrow.GameID `json:"gameId"`
	StakeAmount uint64        `json:"stakeAmount"`
}

type JoinGameTx struct {
	GameID escrow.GameID `json:"gameId"`
}

type StartGameTx struct {
	GameID escrow.GameID `json:"gameId"`
}

type EndGameTx struct {
	GameID      escrow.GameID `json:"gameId"`
	WinnerIndex uint8         `json:"winnerIndex"`
}

type CancelGameTx struct {
	GameID escrow.GameID `json:"gameId"`
}

type RefundPlayerTx struct {
	GameID      escrow.GameID  `json:"gameId"`
	PlayerIndex uint8          `json:"playerIndex"`
	Recipient   escrow.Address `json:"recipient"`
}

// ---- Bank ----

type BankSendTx struct {
	To     escrow.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

// BankMintTx credits an account out of thin air. Only accepted when genesis
// enables the faucet.
type BankMintTx struct {
	To     escrow.Address `json:"to"`
	Amount uint64         `json:"amount"`
}
