package game

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

type roomMessage interface {
	isRoomMessage()
}

type leaveRequest struct {
	player Player
}

type tickMessage struct {
	now time.Time
}

type pingMessage struct{}

func (ClientEnvelope) isRoomMessage() {}
func (joinRequest) isRoomMessage()    {}
func (leaveRequest) isRoomMessage()   {}
func (tickMessage) isRoomMessage()    {}
func (pingMessage) isRoomMessage()    {}

func (r *room) Send(ctx context.Context, e ClientEnvelope) {
	select {
	case r.inbox <- e:
	case <-ctx.Done():
	case <-r.ctx.Done():
	}
}

func (r *room) RequestJoin(jreq joinRequest) {
	select {
	case r.inbox <- jreq:
	case <-jreq.ctx.Done():
	case <-r.ctx.Done():
		go r.registry.RequestJoin(jreq.ctx, jreq)
	}
}

func (r *room) RemoveMe(ctx context.Context, p Player) {
	select {
	case r.inbox <- leaveRequest{player: p}:
	case <-ctx.Done():
	case <-r.ctx.Done():
	}
}

// Tick and PingPlayers never block the registry; a busy room skips a beat.
func (r *room) Tick(now time.Time) {
	select {
	case r.inbox <- tickMessage{now: now}:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.inbox <- pingMessage{}:
	default:
	}
}

func (r *room) CloseAndRelease() {
	r.cancelCtx()
}

func (r *room) GameLoop() {
	for {
		select {
		case msg := <-r.inbox:
			r.process(msg)
		case <-r.ctx.Done():
			r.closed = true
			for _, p := range r.players {
				p.player.CancelAndRelease()
			}
			r.players = nil
			r.drain()
			return
		}
	}
}

// drain bounces joins that were queued before the registry released the room.
func (r *room) drain() {
	for {
		select {
		case msg := <-r.inbox:
			r.process(msg)
		default:
			return
		}
	}
}

func (r *room) process(msg roomMessage) {
	if !r.handleSafely(msg) {
		r.teardown()
	}
	r.flush()
}

func (r *room) handleSafely(msg roomMessage) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("room", r.id).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("room handler panicked, tearing room down")
			r.dataSendTasks = nil
			ok = false
		}
	}()
	r.handleMessage(msg)
	return true
}

func (r *room) handleMessage(msg roomMessage) {
	if r.closed {
		switch m := msg.(type) {
		case joinRequest:
			go r.registry.RequestJoin(m.ctx, m)
		case leaveRequest:
			m.player.CancelAndRelease()
		}
		return
	}

	switch m := msg.(type) {
	case ClientEnvelope:
		r.handleClientEnvelope(m)
	case joinRequest:
		r.handleJoinRequest(m)
	case leaveRequest:
		r.handleRemovePlayer(m.player)
	case tickMessage:
		r.handleTick(m.now)
	case pingMessage:
		for _, p := range r.players {
			p.player.Ping()
		}
	}
}

func (r *room) handleClientEnvelope(e ClientEnvelope) {
	if _, p := r.find(e.from); p == nil {
		return
	}

	switch e.event {
	case EventJoinRoom:
		r.handleRejoinEnvelope(e)
	case EventStartGame:
		r.handleStartGameEnvelope(e)
	case EventSetCategory:
		r.handleSetCategoryEnvelope(e)
	case EventDraw:
		r.handleDrawEnvelope(e)
	case EventClearCanvas:
		r.handleClearCanvasEnvelope(e)
	case EventAnswer:
		r.handleAnswerEnvelope(e)
	}
}

func (r *room) flush() {
	for _, task := range r.dataSendTasks {
		var err error
		if task.binary {
			err = task.to.SendBinary(task.data)
		} else {
			err = task.to.Send(task.data)
		}
		if errors.Is(err, ErrSendBufferFull) {
			log.Warn().Str("room", r.id).Str("player", task.to.ID()).Msg("send buffer full, frame dropped")
		}
	}
	r.dataSendTasks = r.dataSendTasks[:0]
}

// teardown disconnects everyone and hands the room back to the registry.
func (r *room) teardown() {
	if r.closed {
		return
	}
	r.closed = true
	r.rounds.Stop()
	players := r.players
	r.players = nil
	r.drawerIndex = -1
	for _, p := range players {
		p.player.CancelAndRelease()
	}
	r.registry.RemoveRoom(r.id, r)
}
