package escrow

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
)

// Leg is one credit of a multi-party transfer.
type Leg struct {
	To     Address
	Amount uint64
}

// Ledger is the substrate the engine runs against: durable game records and
// custodial balances. Transfer must debit from once and apply every leg, or
// change nothing at all.
type Ledger interface {
	HasGame(id GameID) (bool, error)
	// GetGame returns ErrGameNotFound when no record exists.
	GetGame(id GameID) (*Game, error)
	SetGame(g *Game) error
	Transfer(from Address, legs ...Leg) error
}

// Block carries the chain position an operation executes at.
type Block struct {
	Height int64
	Time   time.Time
}

// Engine validates and applies the six game transitions. It is built per
// transaction over a ledger branch; it holds no state of its own.
type Engine struct {
	ledger Ledger
	sink   EventSink
	house  Address
	block  Block
	logger log.Logger
}

func NewEngine(ledger Ledger, sink EventSink, house Address, block Block, logger log.Logger) *Engine {
	if ledger == nil {
		panic("escrow engine: ledger is nil")
	}
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Engine{
		ledger: ledger,
		sink:   sink,
		house:  house,
		block:  block,
		logger: logger.With("module", "escrow"),
	}
}

func (e *Engine) CreateGame(caller Address, id GameID, stake uint64) (*Game, error) {
	if caller.IsZero() {
		return nil, ErrUnauthorized.Wrap("missing caller")
	}
	if stake == 0 {
		return nil, ErrInvalidStake.Wrap("stake amount must be > 0")
	}
	if _, err := ComputePayout(stake); err != nil {
		return nil, ErrInvalidStake.Wrap(err.Error())
	}
	exists, err := e.ledger.HasGame(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrGameExists.Wrapf("game %s", id)
	}
	_, bump, err := RecordAddress(id)
	if err != nil {
		return nil, fmt.Errorf("derive record address: %w", err)
	}
	if _, _, err := VaultAddress(id); err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}

	g := &Game{
		ID:          id,
		Creator:     caller,
		StakeAmount: stake,
		Status:      StatusWaiting,
		CreatedAt:   e.block.Time.Unix(),
		Bump:        bump,
	}
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	e.logger.Info("game created", "game_id", id, "creator", caller, "stake", stake)
	e.sink.Publish(GameCreated{GameID: id, Creator: caller, StakeAmount: stake})
	return g, nil
}

func (e *Engine) JoinGame(caller Address, id GameID) (*Game, error) {
	if caller.IsZero() {
		return nil, ErrUnauthorized.Wrap("missing caller")
	}
	g, err := e.ledger.GetGame(id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusWaiting {
		return nil, ErrGameNotWaiting.Wrapf("game %s is %s", id, g.Status)
	}
	if g.Players.Contains(caller) {
		return nil, ErrAlreadyJoined.Wrapf("%s in game %s", caller, id)
	}
	if g.Players.Full() {
		return nil, ErrGameFull.Wrapf("game %s has %d players", id, g.Players.Len())
	}

	vault, _, err := VaultAddress(id)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}
	if err := e.ledger.Transfer(caller, Leg{To: vault, Amount: g.StakeAmount}); err != nil {
		return nil, err
	}
	if err := g.Players.Append(caller); err != nil {
		return nil, err
	}
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	count := uint8(g.Players.Len())
	e.logger.Info("player joined", "game_id", id, "player", caller, "player_count", count)
	e.sink.Publish(PlayerJoined{GameID: id, Player: caller, PlayerCount: count})
	return g, nil
}

// StartGame commits the seed and moves the game to Live. Any authenticated
// caller may trigger it.
func (e *Engine) StartGame(caller Address, id GameID) (*Game, error) {
	if caller.IsZero() {
		return nil, ErrUnauthorized.Wrap("missing caller")
	}
	g, err := e.ledger.GetGame(id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusWaiting {
		return nil, ErrGameNotWaiting.Wrapf("game %s is %s", id, g.Status)
	}
	if g.Players.Len() != MaxPlayers {
		return nil, ErrNotEnoughPlayers.Wrapf("game %s has %d/%d players", id, g.Players.Len(), MaxPlayers)
	}

	now := e.block.Time.Unix()
	g.Seed = DeriveSeed(id, e.block.Height, now)
	g.Status = StatusLive
	g.StartedAt = Some(now)
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	e.logger.Info("game started", "game_id", id, "caller", caller, "height", e.block.Height)
	e.sink.Publish(GameStarted{GameID: id, Seed: g.Seed, StartedAt: now})
	return g, nil
}

// EndGame settles a live game: the winner receives the pool minus the house
// fee. Any authenticated caller may trigger it; there is no designated game
// authority.
func (e *Engine) EndGame(caller Address, id GameID, winnerIndex uint8) (*Game, error) {
	if caller.IsZero() {
		return nil, ErrUnauthorized.Wrap("missing caller")
	}
	g, err := e.ledger.GetGame(id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusLive {
		return nil, ErrGameNotLive.Wrapf("game %s is %s", id, g.Status)
	}
	if winnerIndex >= MaxPlayers {
		return nil, ErrInvalidWinner.Wrapf("index %d >= %d", winnerIndex, MaxPlayers)
	}
	winner, ok := g.Players.At(int(winnerIndex))
	if !ok || winner.IsZero() {
		return nil, ErrInvalidWinner.Wrapf("slot %d is empty", winnerIndex)
	}
	if e.house.IsZero() {
		return nil, fmt.Errorf("house address not configured")
	}

	p, err := ComputePayout(g.StakeAmount)
	if err != nil {
		return nil, err
	}
	vault, _, err := VaultAddress(id)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}
	if err := e.ledger.Transfer(vault,
		Leg{To: winner, Amount: p.WinnerPayout},
		Leg{To: e.house, Amount: p.HouseFee},
	); err != nil {
		return nil, err
	}

	g.Winner = Some(winner)
	g.Status = StatusFinished
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	e.logger.Info("game ended",
		"game_id", id,
		"caller", caller,
		"winner", winner,
		"winner_payout", p.WinnerPayout,
		"house_fee", p.HouseFee,
	)
	e.sink.Publish(GameEnded{GameID: id, Winner: winner, WinnerPayout: p.WinnerPayout, HouseFee: p.HouseFee})
	return g, nil
}

// CancelGame closes a waiting game. Stakes stay in the vault until each player
// is refunded individually.
func (e *Engine) CancelGame(caller Address, id GameID) (*Game, error) {
	g, err := e.ledger.GetGame(id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusWaiting {
		return nil, ErrGameNotWaiting.Wrapf("game %s is %s", id, g.Status)
	}
	if caller != g.Creator {
		return nil, ErrUnauthorized.Wrapf("%s is not the creator of game %s", caller, id)
	}

	g.Status = StatusCancelled
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	e.logger.Info("game cancelled", "game_id", id, "players", g.Players.Len())
	e.sink.Publish(GameCancelled{GameID: id})
	return g, nil
}

// RefundPlayer returns one stake from a cancelled game's vault. Anyone may
// trigger it; the funds can only go to the indexed player.
func (e *Engine) RefundPlayer(caller Address, id GameID, playerIndex uint8, recipient Address) (*Game, error) {
	g, err := e.ledger.GetGame(id)
	if err != nil {
		return nil, err
	}
	if g.Status != StatusCancelled {
		return nil, ErrGameNotCancelled.Wrapf("game %s is %s", id, g.Status)
	}
	player, ok := g.Players.At(int(playerIndex))
	if !ok {
		return nil, ErrInvalidPlayer.Wrapf("index %d >= player count %d", playerIndex, g.Players.Len())
	}
	if recipient != player {
		return nil, ErrWrongPlayer.Wrapf("recipient %s is not player %d", recipient, playerIndex)
	}
	if g.Refunded(int(playerIndex)) {
		return nil, ErrAlreadyRefunded.Wrapf("player %d of game %s", playerIndex, id)
	}

	vault, _, err := VaultAddress(id)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}
	if err := e.ledger.Transfer(vault, Leg{To: player, Amount: g.StakeAmount}); err != nil {
		return nil, err
	}
	g.markRefunded(int(playerIndex))
	if err := e.ledger.SetGame(g); err != nil {
		return nil, err
	}

	e.logger.Info("player refunded",
		"game_id", id,
		"caller", caller,
		"player", player,
		"amount", g.StakeAmount,
		"fully_refunded", g.FullyRefunded(),
	)
	e.sink.Publish(PlayerRefunded{GameID: id, Player: player, Amount: g.StakeAmount})
	return g, nil
}
