// Package escrow implements custody and settlement for five-player games.
//
// A game moves Waiting -> Live -> Finished, or Waiting -> Cancelled. Each
// joining player stakes into a vault whose address is derived from the game
// id; starting commits a seed; ending pays the pool to one winner less a 5%
// house fee; cancelling lets every joined player be refunded exactly once.
// The Engine validates every precondition before it moves funds, and relies
// on its Ledger to make each multi-leg transfer all-or-nothing.
package escrow
