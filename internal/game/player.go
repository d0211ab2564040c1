package game

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const MaxRoomIDLength = 64

type outboundFrame struct {
	data   []byte
	binary bool
}

type player struct {
	id          string
	registry    Registry
	rateLimiter *rate.Limiter

	ctx       context.Context
	cancelCtx context.CancelFunc
	inbox     chan outboundFrame
	pingChan  chan struct{}

	mu          sync.Mutex
	room        Room
	joinPending bool
	leaving     bool
}

func NewPlayer(id string, registry Registry) *player {
	ctx, cancel := context.WithCancel(context.Background())
	return &player{
		id:          id,
		registry:    registry,
		rateLimiter: rate.NewLimiter(1, 5),
		ctx:         ctx,
		cancelCtx:   cancel,
		inbox:       make(chan outboundFrame, 256),
		pingChan:    make(chan struct{}, 1),
	}
}

func (p *player) ID() string {
	return p.id
}

func (p *player) Send(data []byte) error {
	return p.enqueue(outboundFrame{data: data})
}

func (p *player) SendBinary(data []byte) error {
	return p.enqueue(outboundFrame{data: data, binary: true})
}

func (p *player) enqueue(f outboundFrame) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- f:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (p *player) Ping() error {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// SetRoom records the room that accepted this player. A player that already
// disconnected is handed straight back for removal.
func (p *player) SetRoom(r Room) {
	p.mu.Lock()
	p.room = r
	p.joinPending = false
	leaving := p.leaving
	p.mu.Unlock()

	if leaving {
		go r.RemoveMe(context.Background(), p)
	}
}

func (p *player) currentRoom() Room {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

func (p *player) CancelAndRelease() {
	p.cancelCtx()
}

// Join asks the registry to seat this player in roomID. Only one room per
// connection; later joins are left to the room itself.
func (p *player) Join(roomID, nickname string, binaryStrokes bool) bool {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || len(roomID) > MaxRoomIDLength {
		return false
	}

	p.mu.Lock()
	if p.room != nil || p.joinPending || p.leaving {
		p.mu.Unlock()
		return false
	}
	p.joinPending = true
	p.mu.Unlock()

	p.registry.RequestJoin(p.ctx, joinRequest{
		ctx:           p.ctx,
		roomID:        roomID,
		nickname:      nickname,
		binaryStrokes: binaryStrokes,
		player:        p,
	})
	return true
}

func (p *player) leaveRoom() {
	p.mu.Lock()
	p.leaving = true
	room := p.room
	p.mu.Unlock()

	if room != nil {
		room.RemoveMe(p.ctx, p)
	}
}

// rateLimited events are the ones a human types; strokes flow freely.
func rateLimited(event string) bool {
	switch event {
	case EventAnswer, EventStartGame, EventSetCategory, EventJoinRoom:
		return true
	}
	return false
}

func (p *player) ReadPump(socket WebsocketConnection) {
	defer func() {
		p.leaveRoom()
		p.cancelCtx()
		socket.Close()
	}()

	for {
		data, binary, err := socket.Read()
		if err != nil {
			return
		}

		envelope, err := decodeClientFrame(data, binary)
		if err != nil {
			log.Debug().Err(err).Str("player", p.id).Msg("ignoring client frame")
			continue
		}
		envelope.from = p.id

		if rateLimited(envelope.event) && !p.rateLimiter.Allow() {
			continue
		}

		room := p.currentRoom()
		if room == nil {
			if envelope.event == EventJoinRoom {
				var payload JoinRoomPayload
				if err := decodePayload(envelope.data, &payload); err == nil {
					p.Join(payload.RoomID, payload.Nickname, payload.BinaryStrokes)
				}
			}
			continue
		}

		room.Send(p.ctx, envelope)
		if p.ctx.Err() != nil {
			return
		}
	}
}

func (p *player) WritePump(socket WebsocketConnection) {
	defer socket.Close()

	for {
		select {
		case <-p.ctx.Done():
			return

		case frame := <-p.inbox:
			var err error
			if frame.binary {
				err = socket.WriteBinary(frame.data)
			} else {
				err = socket.Write(frame.data)
			}
			if err != nil {
				p.leaveRoom()
				return
			}

		case _, ok := <-p.pingChan:
			if !ok {
				return
			}
			if err := socket.Ping(); err != nil {
				p.leaveRoom()
				return
			}
		}
	}
}
