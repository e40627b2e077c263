package codec

import errorsmod "cosmossdk.io/errors"

const Codespace = "tx"

var (
	ErrTxDecode       = errorsmod.Register(Codespace, 2, "tx decode error")
	ErrUnknownTxType  = errorsmod.Register(Codespace, 3, "unknown tx type")
	ErrUnauthorized   = errorsmod.Register(Codespace, 4, "unauthorized")
	ErrInvalidNonce   = errorsmod.Register(Codespace, 5, "invalid nonce")
	ErrFaucetDisabled = errorsmod.Register(Codespace, 6, "faucet disabled")
)
