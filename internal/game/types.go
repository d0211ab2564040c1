package game

import (
	"context"
	"time"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoundActive
	PhaseRoundEnding
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseRoundActive:
		return "round-active"
	case PhaseRoundEnding:
		return "round-ending"
	case PhaseGameOver:
		return "game-over"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

type Category string

const (
	CategoryFood   Category = "food"
	CategoryAnimal Category = "animal"
	CategoryObject Category = "object"
)

var Categories = []Category{CategoryFood, CategoryAnimal, CategoryObject}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// WebsocketConnection is the transport a Player pumps frames through.
type WebsocketConnection interface {
	Close()
	Write(data []byte) error
	WriteBinary(data []byte) error
	// Read returns the next frame and whether it arrived as a binary message.
	Read() (data []byte, binary bool, err error)
	Ping() error
}

// Player is the room-facing side of one connection.
type Player interface {
	ID() string
	Send(data []byte) error
	SendBinary(data []byte) error
	Ping() error
	SetRoom(r Room)
	CancelAndRelease()
}

type Room interface {
	Send(ctx context.Context, e ClientEnvelope)
	RequestJoin(jreq joinRequest)
	RemoveMe(ctx context.Context, p Player)
	Tick(now time.Time)
	PingPlayers()
	GameLoop()
	CloseAndRelease()
	Description() RoomDescription
}

// Registry is what rooms and players need from the room registry.
type Registry interface {
	RequestJoin(ctx context.Context, jreq joinRequest)
	RequestUpdateDescription(desc RoomDescription)
	RemoveRoom(id string, r Room)
}

type WordSource interface {
	Words(category Category) []string
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type RoomDescription struct {
	ID        string `json:"id"`
	Players   int    `json:"players"`
	Phase     Phase  `json:"phase"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"maxRounds"`
}

type joinRequest struct {
	ctx           context.Context
	roomID        string
	nickname      string
	binaryStrokes bool
	player        Player
}

type ClientEnvelope struct {
	event  string
	data   []byte
	stroke *StrokeSegment
	from   string
}
