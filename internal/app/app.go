package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/satoshitonakomito/happybomber/internal/codec"
	"github.com/satoshitonakomito/happybomber/internal/escrow"
	"github.com/satoshitonakomito/happybomber/internal/state"
)

const (
	AppVersion uint64 = 1
	Version           = "v0.1.0"
)

type HBApp struct {
	*abci.BaseApplication

	logger log.Logger
	store  *state.Store

	mu sync.Mutex
	// block stages the current block (or genesis) until Commit.
	block    *state.Cache
	height   int64
	lastHash []byte
	// pendingHash is the app hash reported by FinalizeBlock, committed by Commit.
	pendingHash []byte
}

func New(store *state.Store, logger log.Logger) (*HBApp, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st := state.New(store)
	height, err := st.Height()
	if err != nil {
		return nil, fmt.Errorf("load height: %w", err)
	}
	hash, err := st.AppHash()
	if err != nil {
		return nil, fmt.Errorf("load app hash: %w", err)
	}
	return &HBApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", "app"),
		store:           store,
		height:          height,
		lastHash:        hash,
	}, nil
}

func (a *HBApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "happybomber",
		Version:          Version,
		AppVersion:       AppVersion,
		LastBlockHeight:  a.height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx admits structurally valid, correctly signed transactions whose
// nonce is fresh against committed state.
func (a *HBApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err == nil && env.Type != codec.TypeBankMint {
		a.mu.Lock()
		_, _, err = checkAuth(state.New(a.store), env)
		a.mu.Unlock()
	}
	if err != nil {
		space, code, _ := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: space, Log: err.Error()}, nil
	}
	return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
}

func (a *HBApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	gen, err := ParseGenesis(req.AppStateBytes)
	if err != nil {
		return nil, err
	}
	a.block = state.NewCache(a.store)
	if err := gen.Apply(state.New(a.block)); err != nil {
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	a.lastHash = state.NextAppHash(nil, 0, a.block.Changes())

	a.logger.Info("genesis applied", "chain_id", req.ChainId, "accounts", len(gen.Accounts), "house", gen.House, "faucet", gen.Faucet)
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *HBApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.block == nil {
		a.block = state.NewCache(a.store)
	}

	blk := escrow.Block{Height: req.Height, Time: req.Time}
	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	failed := 0
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, blk)
		if res.Code != abci.CodeTypeOK {
			failed++
		}
		txResults = append(txResults, res)
	}

	if err := state.New(a.block).SetHeight(req.Height); err != nil {
		return nil, err
	}
	a.pendingHash = state.NextAppHash(a.lastHash, req.Height, a.block.Changes())
	if err := state.New(a.block).SetAppHash(a.pendingHash); err != nil {
		return nil, err
	}

	a.logger.Info("finalized block", "height", req.Height, "txs", len(req.Txs), "failed", failed, "app_hash", fmt.Sprintf("%X", a.pendingHash))
	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.pendingHash,
	}, nil
}

func (a *HBApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.block == nil {
		return &abci.CommitResponse{}, nil
	}
	if err := a.block.Write(); err != nil {
		// CometBFT halts on a Commit error; a partially persisted block must not
		// go unnoticed.
		return nil, fmt.Errorf("commit block: %w", err)
	}
	a.block = nil
	if a.pendingHash != nil {
		a.lastHash = a.pendingHash
		a.pendingHash = nil
	}
	height, err := state.New(a.store).Height()
	if err != nil {
		return nil, err
	}
	a.height = height
	return &abci.CommitResponse{}, nil
}

// deliverTx authenticates the envelope on the block cache, so a consumed nonce
// survives a failing body, then executes the body on its own branch. The
// branch is written back only on success.
func (a *HBApp) deliverTx(txBytes []byte, blk escrow.Block) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(err)
	}

	var caller escrow.Address
	if env.Type != codec.TypeBankMint {
		caller, err = consumeAuth(state.New(a.block), env)
		if err != nil {
			return errResult(err)
		}
	}

	branch := state.NewCache(a.block)
	events, err := a.execTx(state.New(branch), caller, env, blk)
	if err != nil {
		a.logger.Debug("tx failed", "type", env.Type, "signer", env.Signer, "err", err)
		return errResult(err)
	}
	if err := branch.Write(); err != nil {
		return errResult(err)
	}
	return &abci.ExecTxResult{Code: abci.CodeTypeOK, Events: events}
}

func (a *HBApp) execTx(st *state.State, caller escrow.Address, env codec.TxEnvelope, blk escrow.Block) ([]abci.Event, error) {
	params, err := st.Params()
	if err != nil {
		return nil, err
	}
	sink := &eventCollector{}
	eng := escrow.NewEngine(st, sink, params.House, blk, a.logger)

	switch env.Type {
	case codec.TypeCreateGame:
		var msg codec.CreateGameTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.CreateGame(caller, msg.GameID, msg.StakeAmount)

	case codec.TypeJoinGame:
		var msg codec.JoinGameTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.JoinGame(caller, msg.GameID)

	case codec.TypeStartGame:
		var msg codec.StartGameTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.StartGame(caller, msg.GameID)

	case codec.TypeEndGame:
		var msg codec.EndGameTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.EndGame(caller, msg.GameID, msg.WinnerIndex)

	case codec.TypeCancelGame:
		var msg codec.CancelGameTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.CancelGame(caller, msg.GameID)

	case codec.TypeRefundPlayer:
		var msg codec.RefundPlayerTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		_, err = eng.RefundPlayer(caller, msg.GameID, msg.PlayerIndex, msg.Recipient)

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		if msg.To.IsZero() || msg.Amount == 0 {
			return nil, state.ErrInvalidTransfer.Wrap("missing to/amount")
		}
		if err := st.Transfer(caller, escrow.Leg{To: msg.To, Amount: msg.Amount}); err != nil {
			return nil, err
		}
		return []abci.Event{newEvent(EventBankSent, map[string]string{
			"from":   caller.String(),
			"to":     msg.To.String(),
			"amount": strconv.FormatUint(msg.Amount, 10),
		})}, nil

	case codec.TypeBankMint:
		if !params.Faucet {
			return nil, codec.ErrFaucetDisabled
		}
		var msg codec.BankMintTx
		if err := codec.DecodeValue(env, &msg); err != nil {
			return nil, err
		}
		if msg.To.IsZero() || msg.Amount == 0 {
			return nil, state.ErrInvalidTransfer.Wrap("missing to/amount")
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, err
		}
		return []abci.Event{newEvent(EventBankMinted, map[string]string{
			"to":     msg.To.String(),
			"amount": strconv.FormatUint(msg.Amount, 10),
		})}, nil

	default:
		return nil, codec.ErrUnknownTxType.Wrap(env.Type)
	}
	if err != nil {
		return nil, err
	}
	return sink.events, nil
}

func errResult(err error) *abci.ExecTxResult {
	space, code, _ := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: space, Log: err.Error()}
}

// ---- Events ----

const (
	EventBankSent   = "BankSent"
	EventBankMinted = "BankMinted"
)

// eventCollector turns engine events into ABCI events for one tx.
type eventCollector struct {
	events []abci.Event
}

func (c *eventCollector) Publish(ev escrow.Event) {
	c.events = append(c.events, newEvent(ev.EventType(), ev.Attributes()))
}

func newEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

// ---- Queries ----

func (a *HBApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /account/<addr>
	// - /game/<id>
	// - /games
	// - /vault/<id>
	// - /params
	st := state.New(a.store)
	path := strings.TrimSpace(req.Path)
	value, err := a.query(st, path)
	if err != nil {
		space, code, _ := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: space, Log: err.Error(), Height: a.height}, nil
	}
	return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: value, Height: a.height}, nil
}

type accountView struct {
	Address escrow.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

type vaultView struct {
	GameID  escrow.GameID  `json:"gameId"`
	Address escrow.Address `json:"address"`
	Bump    uint8          `json:"bump"`
	Balance uint64         `json:"balance"`
}

func (a *HBApp) query(st *state.State, path string) ([]byte, error) {
	switch {
	case path == "/params":
		p, err := st.Params()
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)

	case path == "/games":
		games := []*escrow.Game{}
		err := st.Games(func(g *escrow.Game) bool {
			games = append(games, g)
			return false
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(games)

	case strings.HasPrefix(path, "/account/"):
		addr, err := escrow.ParseAddress(strings.TrimPrefix(path, "/account/"))
		if err != nil {
			return nil, err
		}
		bal, err := st.Balance(addr)
		if err != nil {
			return nil, err
		}
		return json.Marshal(accountView{Address: addr, Balance: bal})

	case strings.HasPrefix(path, "/game/"):
		id, err := escrow.ParseGameID(strings.TrimPrefix(path, "/game/"))
		if err != nil {
			return nil, err
		}
		g, err := st.GetGame(id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(g)

	case strings.HasPrefix(path, "/vault/"):
		id, err := escrow.ParseGameID(strings.TrimPrefix(path, "/vault/"))
		if err != nil {
			return nil, err
		}
		addr, bump, err := escrow.VaultAddress(id)
		if err != nil {
			return nil, err
		}
		bal, err := st.Balance(addr)
		if err != nil {
			return nil, err
		}
		return json.Marshal(vaultView{GameID: id, Address: addr, Bump: bump, Balance: bal})

	default:
		return nil, fmt.Errorf("unknown query path %q", path)
	}
}

