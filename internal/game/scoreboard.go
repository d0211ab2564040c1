package game

import (
	"math"
	"sort"
	"time"
)

const (
	MaxGuessScore    = 100
	MinGuessScore    = 10
	DrawerGuessBonus = 20
)

// GuessScore awards more points for faster guesses, never below MinGuessScore.
func GuessScore(remaining, total time.Duration) int {
	if total <= 0 {
		return MinGuessScore
	}
	frac := float64(remaining) / float64(total)
	frac = math.Max(0, math.Min(1, frac))
	return int(math.Round(MinGuessScore + (MaxGuessScore-MinGuessScore)*frac))
}

// ScoreBoard keeps cumulative scores per participant id.
type ScoreBoard struct {
	scores map[string]int
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{scores: map[string]int{}}
}

func (s *ScoreBoard) Add(id string, points int) int {
	if points > 0 {
		s.scores[id] += points
	}
	return s.scores[id]
}

func (s *ScoreBoard) Score(id string) int {
	return s.scores[id]
}

func (s *ScoreBoard) Forget(id string) {
	delete(s.scores, id)
}

func (s *ScoreBoard) Reset() {
	clear(s.scores)
}

// Ranked orders players by score, highest first, keeping roster order on ties.
func Ranked(players []PlayerInfo) []PlayerInfo {
	out := append([]PlayerInfo(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
