package game

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	MaxNicknameLength = 20
	MaxMessageLength  = 200
	MaxRoundsLimit    = 20
)

// Config holds the tunables shared by every room of a registry.
type Config struct {
	RoundDuration     time.Duration
	RoundSettle       time.Duration
	TickInterval      time.Duration
	PingInterval      time.Duration
	HintFractions     []float64
	MaxRounds         int
	MinPlayers        int
	EndOnFirstCorrect bool
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:     40 * time.Second,
		RoundSettle:       3 * time.Second,
		TickInterval:      250 * time.Millisecond,
		PingInterval:      30 * time.Second,
		HintFractions:     DefaultHintFractions,
		MaxRounds:         3,
		MinPlayers:        2,
		EndOnFirstCorrect: true,
	}
}

type participant struct {
	player        Player
	id            string
	nickname      string
	guessed       bool
	binaryStrokes bool
}

type dataSendTask struct {
	to     Player
	data   []byte
	binary bool
}

type room struct {
	id       string
	config   Config
	registry Registry
	clock    func() time.Time

	players     []*participant
	drawerIndex int
	round       int
	maxRounds   int
	phase       Phase
	category    Category
	rounds      *RoundController
	scores      *ScoreBoard
	nextRoundAt time.Time

	inbox         chan roomMessage
	ctx           context.Context
	cancelCtx     context.CancelFunc
	closed        bool
	dataSendTasks []dataSendTask
}

func NewRoom(id string, registry Registry, config Config, words WordSource) *room {
	ctx, cancel := context.WithCancel(context.Background())
	return &room{
		id:          id,
		config:      config,
		registry:    registry,
		clock:       time.Now,
		players:     make([]*participant, 0, 8),
		drawerIndex: -1,
		maxRounds:   config.MaxRounds,
		phase:       PhaseLobby,
		category:    CategoryFood,
		rounds:      NewRoundController(words, config.RoundDuration, config.HintFractions, rand.New(rand.NewSource(time.Now().UnixNano()))),
		scores:      NewScoreBoard(),
		inbox:       make(chan roomMessage, 1024),
		ctx:         ctx,
		cancelCtx:   cancel,
	}
}

func (r *room) Description() RoomDescription {
	return RoomDescription{
		ID:        r.id,
		Players:   len(r.players),
		Phase:     r.phase,
		Round:     r.round,
		MaxRounds: r.maxRounds,
	}
}

func (r *room) find(id string) (int, *participant) {
	for i, p := range r.players {
		if p.id == id {
			return i, p
		}
	}
	return -1, nil
}

// drawer is the participant holding the pen, or about to in RoundEnding.
func (r *room) drawer() *participant {
	if r.phase != PhaseRoundActive && r.phase != PhaseRoundEnding {
		return nil
	}
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

// upcomingDrawer is the participant allowed to choose the category.
func (r *room) upcomingDrawer() *participant {
	switch r.phase {
	case PhaseLobby, PhaseGameOver:
		if len(r.players) > 0 {
			return r.players[0]
		}
	case PhaseRoundEnding:
		return r.drawer()
	}
	return nil
}

func (r *room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, PlayerInfo{ID: p.id, Nickname: p.nickname, Score: r.scores.Score(p.id)})
	}
	return infos
}

func (r *room) snapshot() RoomStatePayload {
	s := RoomStatePayload{
		RoomID:      r.id,
		Players:     r.playerInfos(),
		Round:       r.round,
		MaxRounds:   r.maxRounds,
		RoundActive: r.phase == PhaseRoundActive,
		Category:    r.category,
	}
	if d := r.drawer(); d != nil {
		s.DrawerID = d.id
	}
	return s
}

func (r *room) encode(event string, payload any) []byte {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Error().Err(err).Str("room", r.id).Msg("dropping unencodable event")
		return nil
	}
	return data
}

func (r *room) sendTo(p *participant, event string, payload any) {
	data := r.encode(event, payload)
	if data == nil {
		return
	}
	r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p.player, data: data})
}

func (r *room) broadcast(event string, payload any) {
	r.broadcastExcept("", event, payload)
}

func (r *room) broadcastExcept(exceptID, event string, payload any) {
	data := r.encode(event, payload)
	if data == nil {
		return
	}
	for _, p := range r.players {
		if p.id == exceptID {
			continue
		}
		r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p.player, data: data})
	}
}

func (r *room) systemMessage(msg string) {
	r.broadcast(EventSystemMessage, SystemMessagePayload{Message: msg})
}

func (r *room) updateDescription() {
	if r.registry != nil {
		r.registry.RequestUpdateDescription(r.Description())
	}
}

// sanitizeNickname trims and truncates; blank names fall back to one derived from id.
func sanitizeNickname(nickname, id string) string {
	nickname = strings.Join(strings.Fields(nickname), " ")
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		nickname = strings.TrimSpace(string([]rune(nickname)[:MaxNicknameLength]))
	}
	if nickname == "" {
		suffix := strings.ReplaceAll(id, "-", "")
		if len(suffix) > 4 {
			suffix = suffix[:4]
		}
		nickname = "Player-" + suffix
	}
	return nickname
}

func truncateMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		msg = string([]rune(msg)[:MaxMessageLength])
	}
	return msg
}
