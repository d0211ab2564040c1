package game

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

type registryMessage interface {
	isRegistryMessage()
}

type roomRemoval struct {
	id   string
	room Room
}

type roomListRequest struct {
	resp chan []RoomDescription
}

func (joinRequest) isRegistryMessage()     {}
func (roomRemoval) isRegistryMessage()     {}
func (RoomDescription) isRegistryMessage() {}
func (roomListRequest) isRegistryMessage() {}

// RoomRegistry owns the id to room mapping. Rooms are created on first join
// and dropped when their last participant leaves.
type RoomRegistry struct {
	config        Config
	tickerCreator PeriodicTickerChannelCreator
	newRoom       func(id string) Room

	rooms        map[string]Room
	descriptions map[string]RoomDescription

	inbox chan registryMessage
	done  chan struct{}
}

func NewRoomRegistry(config Config, words WordSource, tickerCreator PeriodicTickerChannelCreator) *RoomRegistry {
	rr := &RoomRegistry{
		config:        config,
		tickerCreator: tickerCreator,
		rooms:         map[string]Room{},
		descriptions:  map[string]RoomDescription{},
		inbox:         make(chan registryMessage, 256),
		done:          make(chan struct{}),
	}
	rr.newRoom = func(id string) Room {
		return NewRoom(id, rr, config, words)
	}
	return rr
}

func (rr *RoomRegistry) RequestJoin(ctx context.Context, jreq joinRequest) {
	select {
	case rr.inbox <- jreq:
	case <-ctx.Done():
	case <-rr.done:
	}
}

func (rr *RoomRegistry) RequestUpdateDescription(desc RoomDescription) {
	select {
	case rr.inbox <- desc:
	default:
	}
}

func (rr *RoomRegistry) RemoveRoom(id string, r Room) {
	select {
	case rr.inbox <- roomRemoval{id: id, room: r}:
	case <-rr.done:
	}
}

// Rooms lists the live rooms ordered by id.
func (rr *RoomRegistry) Rooms(ctx context.Context) []RoomDescription {
	resp := make(chan []RoomDescription, 1)
	select {
	case rr.inbox <- roomListRequest{resp: resp}:
	case <-ctx.Done():
		return nil
	case <-rr.done:
		return nil
	}
	select {
	case list := <-resp:
		return list
	case <-ctx.Done():
		return nil
	case <-rr.done:
		return nil
	}
}

func (rr *RoomRegistry) RegistryActor(ctx context.Context, started chan struct{}) {
	ticker := rr.tickerCreator.Create(rr.config.TickInterval)
	pingTicker := rr.tickerCreator.Create(rr.config.PingInterval)

	close(started)
	defer rr.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker:
			for _, r := range rr.rooms {
				r.Tick(now)
			}

		case <-pingTicker:
			for _, r := range rr.rooms {
				r.PingPlayers()
			}

		case msg := <-rr.inbox:
			switch m := msg.(type) {
			case joinRequest:
				rr.handleJoinReq(m)
			case roomRemoval:
				rr.handleRemoveRoom(m)
			case RoomDescription:
				if _, ok := rr.rooms[m.ID]; ok {
					rr.descriptions[m.ID] = m
				}
			case roomListRequest:
				rr.handleListRooms(m)
			}
		}
	}
}

func (rr *RoomRegistry) handleJoinReq(jreq joinRequest) {
	r, ok := rr.rooms[jreq.roomID]
	if !ok {
		r = rr.newRoom(jreq.roomID)
		rr.rooms[jreq.roomID] = r
		rr.descriptions[jreq.roomID] = r.Description()
		go r.GameLoop()
		log.Info().Str("room", jreq.roomID).Int("rooms", len(rr.rooms)).Msg("room created")
	}
	r.RequestJoin(jreq)
}

// handleRemoveRoom ignores stale removals for an id that already maps to a newer room.
func (rr *RoomRegistry) handleRemoveRoom(m roomRemoval) {
	current, ok := rr.rooms[m.id]
	if ok && current == m.room {
		delete(rr.rooms, m.id)
		delete(rr.descriptions, m.id)
		log.Info().Str("room", m.id).Int("rooms", len(rr.rooms)).Msg("room removed")
	}
	m.room.CloseAndRelease()
}

func (rr *RoomRegistry) handleListRooms(req roomListRequest) {
	list := make([]RoomDescription, 0, len(rr.descriptions))
	for _, d := range rr.descriptions {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	req.resp <- list
}

func (rr *RoomRegistry) shutdown() {
	close(rr.done)
	for id, r := range rr.rooms {
		r.CloseAndRelease()
		delete(rr.rooms, id)
	}
	log.Info().Msg("room registry stopped")
}

type ticker struct{}

func (t *ticker) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}

func NewTickerGen() *ticker {
	return &ticker{}
}
