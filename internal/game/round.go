package game

import (
	"math/rand"
	"sort"
	"strings"
	"time"
	"unicode"
)

const HintPlaceholder = '_'

var DefaultHintFractions = []float64{0.5, 0.75}

// RoundController owns one room's word, countdown deadline and hint schedule.
// It holds no timer of its own: the room asks it to Advance on every tick.
type RoundController struct {
	words     WordSource
	duration  time.Duration
	fractions []float64
	rng       *rand.Rand

	word      string
	lastWord  string
	startedAt time.Time
	deadline  time.Time
	hintsDue  []time.Time
	revealed  int
	active    bool
}

func NewRoundController(words WordSource, duration time.Duration, fractions []float64, rng *rand.Rand) *RoundController {
	if words == nil {
		words = DefaultWords()
	}
	if fractions == nil {
		fractions = DefaultHintFractions
	}
	fs := make([]float64, 0, len(fractions))
	for _, f := range fractions {
		if f > 0 && f < 1 {
			fs = append(fs, f)
		}
	}
	sort.Float64s(fs)
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RoundController{
		words:     words,
		duration:  duration,
		fractions: fs,
		rng:       rng,
	}
}

// PickWord draws a word from the category, avoiding the room's previous word
// whenever the table offers an alternative.
func (rc *RoundController) PickWord(category Category) string {
	pool := rc.words.Words(category)
	if len(pool) == 0 {
		pool = DefaultWords().Words(category)
	}
	if len(pool) == 0 {
		return ""
	}

	candidates := pool
	if len(pool) > 1 && rc.lastWord != "" {
		candidates = make([]string, 0, len(pool))
		for _, w := range pool {
			if w != rc.lastWord {
				candidates = append(candidates, w)
			}
		}
		if len(candidates) == 0 {
			candidates = pool
		}
	}
	return candidates[rc.rng.Intn(len(candidates))]
}

// Start begins a round at now and returns the chosen word.
func (rc *RoundController) Start(category Category, now time.Time) string {
	rc.word = rc.PickWord(category)
	rc.lastWord = rc.word
	rc.startedAt = now
	rc.deadline = now.Add(rc.duration)
	rc.revealed = 0
	rc.active = true

	rc.hintsDue = rc.hintsDue[:0]
	for _, f := range rc.fractions {
		rc.hintsDue = append(rc.hintsDue, now.Add(time.Duration(float64(rc.duration)*f)))
	}
	return rc.word
}

// Advance reveals at most one due hint per call and reports whether the
// deadline has passed. An expired round reveals nothing.
func (rc *RoundController) Advance(now time.Time) (hint string, revealed bool, expired bool) {
	if !rc.active {
		return "", false, false
	}
	if !now.Before(rc.deadline) {
		return "", false, true
	}
	if len(rc.hintsDue) > 0 && !now.Before(rc.hintsDue[0]) {
		rc.hintsDue = rc.hintsDue[1:]
		if rc.revealed < rc.maxReveals() {
			rc.revealed++
			return rc.Hint(), true, false
		}
	}
	return "", false, false
}

// Stop cancels the deadline and pending hints and returns the ended word.
func (rc *RoundController) Stop() string {
	ended := rc.word
	rc.active = false
	rc.word = ""
	rc.hintsDue = rc.hintsDue[:0]
	rc.deadline = time.Time{}
	return ended
}

func (rc *RoundController) Active() bool { return rc.active }

func (rc *RoundController) Word() string { return rc.word }

func (rc *RoundController) Revealed() int { return rc.revealed }

func (rc *RoundController) Duration() time.Duration { return rc.duration }

func (rc *RoundController) Deadline() time.Time { return rc.deadline }

func (rc *RoundController) Remaining(now time.Time) time.Duration {
	if !rc.active {
		return 0
	}
	if d := rc.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Hint renders the mask shown to guessers.
func (rc *RoundController) Hint() string {
	return HintMask(rc.word, rc.revealed)
}

func (rc *RoundController) maxReveals() int {
	letters := 0
	for _, r := range rc.word {
		if !unicode.IsSpace(r) {
			letters++
		}
	}
	if letters <= 1 {
		return 0
	}
	return letters - 1
}

// HintMask shows the first n letters of word, keeps spaces and hides the rest.
// The last letter is never shown.
func HintMask(word string, n int) string {
	runes := []rune(word)
	letters := 0
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			letters++
		}
	}
	if n > letters-1 {
		n = letters - 1
	}

	var b strings.Builder
	shown := 0
	for _, r := range runes {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case shown < n:
			b.WriteRune(r)
			shown++
		default:
			b.WriteRune(HintPlaceholder)
		}
	}
	return b.String()
}
