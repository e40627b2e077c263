package escrow

import "fmt"

const (
	EventTypeGameCreated    = "GameCreated"
	EventTypePlayerJoined   = "PlayerJoined"
	EventTypeGameStarted    = "GameStarted"
	EventTypeGameEnded      = "GameEnded"
	EventTypeGameCancelled  = "GameCancelled"
	EventTypePlayerRefunded = "PlayerRefunded"
)

// Event is a notification published after a successful transition.
type Event interface {
	EventType() string
	Attributes() map[string]string
}

// EventSink receives events. Publishing is fire-and-forget: the engine never
// waits on or inspects subscribers.
type EventSink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

type nopSink struct{}

func (nopSink) Publish(Event) {}

type GameCreated struct {
	GameID      GameID
	Creator     Address
	StakeAmount uint64
}

func (GameCreated) EventType() string { return EventTypeGameCreated }

func (e GameCreated) Attributes() map[string]string {
	return map[string]string{
		"gameId":      e.GameID.String(),
		"creator":     e.Creator.String(),
		"stakeAmount": fmt.Sprintf("%d", e.StakeAmount),
	}
}

type PlayerJoined struct {
	GameID      GameID
	Player      Address
	PlayerCount uint8
}

func (PlayerJoined) EventType() string { return EventTypePlayerJoined }

func (e PlayerJoined) Attributes() map[string]string {
	return map[string]string{
		"gameId":      e.GameID.String(),
		"player":      e.Player.String(),
		"playerCount": fmt.Sprintf("%d", e.PlayerCount),
	}
}

type GameStarted struct {
	GameID    GameID
	Seed      [32]byte
	StartedAt int64
}

func (GameStarted) EventType() string { return EventTypeGameStarted }

func (e GameStarted) Attributes() map[string]string {
	return map[string]string{
		"gameId":    e.GameID.String(),
		"seed":      bytesToHex(e.Seed[:]),
		"startedAt": fmt.Sprintf("%d", e.StartedAt),
	}
}

type GameEnded struct {
	GameID       GameID
	Winner       Address
	WinnerPayout uint64
	HouseFee     uint64
}

func (GameEnded) EventType() string { return EventTypeGameEnded }

func (e GameEnded) Attributes() map[string]string {
	return map[string]string{
		"gameId":       e.GameID.String(),
		"winner":       e.Winner.String(),
		"winnerPayout": fmt.Sprintf("%d", e.WinnerPayout),
		"houseFee":     fmt.Sprintf("%d", e.HouseFee),
	}
}

type GameCancelled struct {
	GameID GameID
}

func (GameCancelled) EventType() string { return EventTypeGameCancelled }

func (e GameCancelled) Attributes() map[string]string {
	return map[string]string{"gameId": e.GameID.String()}
}

type PlayerRefunded struct {
	GameID GameID
	Player Address
	Amount uint64
}

func (PlayerRefunded) EventType() string { return EventTypePlayerRefunded }

func (e PlayerRefunded) Attributes() map[string]string {
	return map[string]string{
		"gameId": e.GameID.String(),
		"player": e.Player.String(),
		"amount": fmt.Sprintf("%d", e.Amount),
	}
}
