package state

import errorsmod "cosmossdk.io/errors"

const BankCodespace = "bank"

var (
	ErrInsufficientFunds = errorsmod.Register(BankCodespace, 2, "insufficient funds")
	ErrBalanceOverflow   = errorsmod.Register(BankCodespace, 3, "balance overflow")
	ErrInvalidTransfer   = errorsmod.Register(BankCodespace, 4, "invalid transfer")
)
