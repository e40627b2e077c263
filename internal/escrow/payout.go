package escrow

import (
	sdkmath "cosmossdk.io/math"
)

// Payout is the settlement split of a finished game's pool.
type Payout struct {
	TotalPool    uint64
	HouseFee     uint64
	WinnerPayout uint64
}

// ComputePayout splits stake×MaxPlayers into a floor-divided 5% house fee and
// the remainder for the winner, so WinnerPayout+HouseFee == TotalPool exactly.
func ComputePayout(stake uint64) (Payout, error) {
	total := sdkmath.NewIntFromUint64(stake).MulRaw(MaxPlayers)
	if !total.IsUint64() {
		return Payout{}, ErrPoolOverflow.Wrapf("stake %d × %d", stake, MaxPlayers)
	}
	fee := total.QuoRaw(HouseFeeDivisor)
	winner := total.Sub(fee)
	return Payout{
		TotalPool:    total.Uint64(),
		HouseFee:     fee.Uint64(),
		WinnerPayout: winner.Uint64(),
	}, nil
}
