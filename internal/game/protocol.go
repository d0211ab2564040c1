package game

import (
	"encoding/json"
	"fmt"
)

// Client to server events.
const (
	EventJoinRoom    = "joinRoom"
	EventStartGame   = "startGame"
	EventSetCategory = "setCategory"
	EventDraw        = "draw"
	EventClearCanvas = "clearCanvas"
	EventAnswer      = "answer"
)

// Server to client events.
const (
	EventRoomState     = "roomState"
	EventWordForDrawer = "wordForDrawer"
	EventRoundStarted  = "roundStarted"
	EventHintUpdated   = "hintUpdated"
	EventRoundEnded    = "roundEnded"
	EventGameEnded     = "gameEnded"
	EventChat          = "chat"
	EventSystemMessage = "systemMessage"
	EventAnswerResult  = "answerResult"
)

type wireEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	RoomID        string `json:"roomId"`
	Nickname      string `json:"nickname"`
	BinaryStrokes bool   `json:"binaryStrokes,omitempty"`
}

type StartGamePayload struct {
	MaxRounds int `json:"maxRounds,omitempty"`
}

type SetCategoryPayload struct {
	Category string `json:"category"`
}

type DrawPayload struct {
	RoomID    string  `json:"roomId"`
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
}

type ClearCanvasPayload struct {
	RoomID string `json:"roomId"`
}

type AnswerPayload struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

type RoomStatePayload struct {
	RoomID      string       `json:"roomId"`
	DrawerID    string       `json:"drawerId,omitempty"`
	Players     []PlayerInfo `json:"players"`
	Round       int          `json:"round"`
	MaxRounds   int          `json:"maxRounds"`
	RoundActive bool         `json:"roundActive"`
	Category    Category     `json:"category"`
}

type WordForDrawerPayload struct {
	Word string `json:"word"`
}

type RoundStartedPayload struct {
	Round            int    `json:"round"`
	MaxRounds        int    `json:"maxRounds"`
	DrawerID         string `json:"drawerId"`
	RoundDurationSec int    `json:"roundDurationSec"`
}

type HintUpdatedPayload struct {
	Hint string `json:"hint"`
}

type RoundEndedPayload struct {
	Reason string `json:"reason"`
	Word   string `json:"word,omitempty"`
}

type GameEndedPayload struct {
	Players []PlayerInfo `json:"players"`
}

type ChatPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

type SystemMessagePayload struct {
	Message string `json:"message"`
}

type AnswerResultPayload struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Word     string `json:"word,omitempty"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return json.Marshal(wireEnvelope{Event: event, Data: data})
}

// decodeClientFrame reads a text frame as a JSON event envelope and a binary
// frame as a stroke.
func decodeClientFrame(data []byte, binary bool) (ClientEnvelope, error) {
	if len(data) == 0 {
		return ClientEnvelope{}, ErrMalformedFrame
	}

	if binary {
		stroke, err := decodeStrokeFrame(data)
		if err != nil {
			return ClientEnvelope{}, err
		}
		return ClientEnvelope{event: EventDraw, stroke: &stroke}, nil
	}

	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientEnvelope{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	switch env.Event {
	case EventJoinRoom, EventStartGame, EventSetCategory, EventDraw, EventClearCanvas, EventAnswer:
	default:
		return ClientEnvelope{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	return ClientEnvelope{event: env.Event, data: env.Data}, nil
}

// decodePayload tolerates an absent payload and leaves dst zeroed.
func decodePayload(data []byte, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	return nil
}

// decodeCategory accepts {"category": "food"} as well as a bare "food".
func decodeCategory(data []byte) (Category, bool) {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		return ParseCategory(bare)
	}
	var p SetCategoryPayload
	if err := decodePayload(data, &p); err != nil {
		return "", false
	}
	return ParseCategory(p.Category)
}
