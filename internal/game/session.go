package game

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ReasonCorrectAnswer = "correct answer"
	ReasonTimeUp        = "time's up"
	ReasonDrawerLeft    = "drawer left"
)

func (r *room) handleJoinRequest(jreq joinRequest) {
	if jreq.ctx != nil && jreq.ctx.Err() != nil {
		return
	}
	id := jreq.player.ID()

	if _, existing := r.find(id); existing != nil {
		jreq.player.SetRoom(r)
		r.sendTo(existing, EventRoomState, r.snapshot())
		return
	}

	p := &participant{
		player:        jreq.player,
		id:            id,
		nickname:      sanitizeNickname(jreq.nickname, id),
		binaryStrokes: jreq.binaryStrokes,
	}
	r.players = append(r.players, p)
	jreq.player.SetRoom(r)

	log.Info().Str("room", r.id).Str("player", id).Str("nickname", p.nickname).Msg("player joined")

	r.broadcast(EventRoomState, r.snapshot())
	r.broadcastExcept(id, EventSystemMessage, SystemMessagePayload{Message: p.nickname + " joined the room"})
	if r.phase == PhaseRoundActive {
		r.sendTo(p, EventHintUpdated, HintUpdatedPayload{Hint: r.rounds.Hint()})
	}
	r.updateDescription()
}

// handleRejoinEnvelope answers a joinRoom from someone already seated here.
func (r *room) handleRejoinEnvelope(e ClientEnvelope) {
	var payload JoinRoomPayload
	if err := decodePayload(e.data, &payload); err != nil || payload.RoomID != r.id {
		return
	}
	_, p := r.find(e.from)
	r.sendTo(p, EventRoomState, r.snapshot())
}

func (r *room) handleRemovePlayer(pl Player) {
	idx, p := r.find(pl.ID())
	if p == nil {
		pl.CancelAndRelease()
		return
	}

	wasDrawer := r.phase == PhaseRoundActive && idx == r.drawerIndex

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.scores.Forget(p.id)
	pl.CancelAndRelease()

	log.Info().Str("room", r.id).Str("player", p.id).Msg("player left")

	if len(r.players) == 0 {
		r.teardown()
		return
	}

	// Keep drawerIndex pointing at the same roster member. When the drawer
	// itself leaves mid-round, step back so rotation lands on whoever took
	// the vacated slot.
	switch r.phase {
	case PhaseRoundActive:
		if idx <= r.drawerIndex {
			r.drawerIndex--
		}
	case PhaseRoundEnding:
		if idx < r.drawerIndex {
			r.drawerIndex--
		}
		if r.drawerIndex >= len(r.players) {
			r.drawerIndex = 0
		}
	}

	r.broadcast(EventSystemMessage, SystemMessagePayload{Message: p.nickname + " left the room"})

	now := r.clock()
	inGame := r.phase == PhaseRoundActive || r.phase == PhaseRoundEnding
	switch {
	case inGame && len(r.players) < r.config.MinPlayers:
		if wasDrawer {
			r.broadcast(EventRoundEnded, RoundEndedPayload{Reason: ReasonDrawerLeft, Word: r.rounds.Stop()})
		}
		r.finishGame()
	case wasDrawer:
		r.endRound(ReasonDrawerLeft, now)
	case r.phase == PhaseRoundActive && !r.config.EndOnFirstCorrect && r.everyoneGuessed():
		r.endRound(ReasonCorrectAnswer, now)
	default:
		r.broadcast(EventRoomState, r.snapshot())
	}
	r.updateDescription()
}

func (r *room) handleStartGameEnvelope(e ClientEnvelope) {
	if r.phase != PhaseLobby && r.phase != PhaseGameOver {
		return
	}
	_, sender := r.find(e.from)

	if len(r.players) < r.config.MinPlayers {
		r.sendTo(sender, EventSystemMessage, SystemMessagePayload{
			Message: fmt.Sprintf("At least %d players are needed to start", r.config.MinPlayers),
		})
		return
	}

	var payload StartGamePayload
	if err := decodePayload(e.data, &payload); err != nil {
		log.Debug().Err(err).Str("room", r.id).Msg("bad startGame payload")
	}
	r.maxRounds = clampRounds(payload.MaxRounds, r.config.MaxRounds)

	r.scores.Reset()
	r.round = 0
	r.drawerIndex = 0

	log.Info().Str("room", r.id).Int("maxRounds", r.maxRounds).Int("players", len(r.players)).Msg("game started")
	r.startRound(r.clock())
}

func clampRounds(requested, fallback int) int {
	if requested == 0 {
		requested = fallback
	}
	return max(1, min(requested, MaxRoundsLimit))
}

func (r *room) handleSetCategoryEnvelope(e ClientEnvelope) {
	next := r.upcomingDrawer()
	if next == nil || next.id != e.from {
		return
	}
	category, ok := decodeCategory(e.data)
	if !ok {
		return
	}
	r.category = category
	r.broadcast(EventRoomState, r.snapshot())
	r.systemMessage(fmt.Sprintf("%s picked the category %s", next.nickname, category))
}

func (r *room) handleAnswerEnvelope(e ClientEnvelope) {
	_, sender := r.find(e.from)

	var payload AnswerPayload
	if err := decodePayload(e.data, &payload); err != nil {
		return
	}
	msg := truncateMessage(payload.Message)
	if msg == "" {
		return
	}
	chat := ChatPayload{ID: sender.id, Nickname: sender.nickname, Message: msg}

	drawer := r.drawer()
	if r.phase != PhaseRoundActive || drawer == nil || drawer.id == sender.id {
		r.broadcast(EventChat, chat)
		return
	}

	// Guessers talk among themselves so the word does not leak.
	if sender.guessed {
		data := r.encode(EventChat, chat)
		for _, p := range r.players {
			if p.guessed || p.id == drawer.id {
				r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p.player, data: data})
			}
		}
		return
	}

	now := r.clock()
	if !Judge(msg, r.rounds.Word()) {
		r.broadcast(EventChat, chat)
		return
	}

	points := GuessScore(r.rounds.Remaining(now), r.rounds.Duration())
	r.scores.Add(sender.id, points)
	r.scores.Add(drawer.id, DrawerGuessBonus)
	sender.guessed = true

	endNow := r.config.EndOnFirstCorrect || r.everyoneGuessed()
	result := AnswerResultPayload{ID: sender.id, Nickname: sender.nickname, Score: points}
	if endNow {
		result.Word = r.rounds.Word()
	}
	r.broadcast(EventAnswerResult, result)

	if endNow {
		r.endRound(ReasonCorrectAnswer, now)
		return
	}
	r.broadcast(EventRoomState, r.snapshot())
}

func (r *room) everyoneGuessed() bool {
	drawer := r.drawer()
	for _, p := range r.players {
		if p != drawer && !p.guessed {
			return false
		}
	}
	return true
}

func (r *room) handleTick(now time.Time) {
	switch r.phase {
	case PhaseRoundActive:
		hint, revealed, expired := r.rounds.Advance(now)
		if expired {
			r.endRound(ReasonTimeUp, now)
			return
		}
		if revealed {
			r.broadcastExcept(r.drawer().id, EventHintUpdated, HintUpdatedPayload{Hint: hint})
		}
	case PhaseRoundEnding:
		if !now.Before(r.nextRoundAt) {
			r.startRound(now)
		}
	}
}

func (r *room) startRound(now time.Time) {
	if len(r.players) == 0 {
		return
	}
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
	}

	r.round++
	r.phase = PhaseRoundActive
	r.nextRoundAt = time.Time{}
	for _, p := range r.players {
		p.guessed = false
	}
	word := r.rounds.Start(r.category, now)
	drawer := r.players[r.drawerIndex]

	log.Debug().Str("room", r.id).Int("round", r.round).Str("drawer", drawer.id).Msg("round started")

	r.broadcast(EventRoundStarted, RoundStartedPayload{
		Round:            r.round,
		MaxRounds:        r.maxRounds,
		DrawerID:         drawer.id,
		RoundDurationSec: int(r.rounds.Duration() / time.Second),
	})
	r.sendTo(drawer, EventWordForDrawer, WordForDrawerPayload{Word: word})
	r.broadcastExcept(drawer.id, EventHintUpdated, HintUpdatedPayload{Hint: r.rounds.Hint()})
	r.broadcast(EventRoomState, r.snapshot())
	r.updateDescription()
}

// endRound closes the running round and either schedules the next one or
// finishes the game.
func (r *room) endRound(reason string, now time.Time) {
	word := r.rounds.Stop()
	r.phase = PhaseRoundEnding
	r.broadcast(EventRoundEnded, RoundEndedPayload{Reason: reason, Word: word})

	log.Debug().Str("room", r.id).Int("round", r.round).Str("reason", reason).Msg("round ended")

	if r.round >= r.maxRounds {
		r.finishGame()
		return
	}

	r.drawerIndex = (r.drawerIndex + 1) % len(r.players)
	if r.config.RoundSettle <= 0 {
		r.startRound(now)
		return
	}
	r.nextRoundAt = now.Add(r.config.RoundSettle)
	r.broadcast(EventRoomState, r.snapshot())
	r.updateDescription()
}

func (r *room) finishGame() {
	r.rounds.Stop()
	r.phase = PhaseGameOver
	r.drawerIndex = -1
	r.nextRoundAt = time.Time{}
	for _, p := range r.players {
		p.guessed = false
	}

	standings := Ranked(r.playerInfos())
	log.Info().Str("room", r.id).Int("rounds", r.round).Msg("game over")

	r.broadcast(EventGameEnded, GameEndedPayload{Players: standings})
	r.broadcast(EventRoomState, r.snapshot())
	r.updateDescription()
}
