package game

import (
	"math"
	"regexp"

	"github.com/rs/zerolog/log"
)

const (
	MinLineWidth     = 1.0
	MaxLineWidth     = 50.0
	DefaultLineWidth = 4.0
	DefaultColor     = "#000000"
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// StrokeSegment is one line piece of the drawer's canvas.
type StrokeSegment struct {
	X0        float64
	Y0        float64
	X1        float64
	Y1        float64
	Color     string
	LineWidth float64
}

// Validate rejects non-finite coordinates and malformed colors, and clamps
// the line width into range.
func (s *StrokeSegment) Validate() bool {
	for _, v := range []float64{s.X0, s.Y0, s.X1, s.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	if s.Color == "" {
		s.Color = DefaultColor
	} else if !hexColor.MatchString(s.Color) {
		return false
	}

	switch {
	case math.IsNaN(s.LineWidth) || math.IsInf(s.LineWidth, 0) || s.LineWidth == 0:
		s.LineWidth = DefaultLineWidth
	case s.LineWidth < MinLineWidth:
		s.LineWidth = MinLineWidth
	case s.LineWidth > MaxLineWidth:
		s.LineWidth = MaxLineWidth
	}
	return true
}

func (r *room) isDrawing(id string) bool {
	if r.phase != PhaseRoundActive || r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return false
	}
	return r.players[r.drawerIndex].id == id
}

func (r *room) handleDrawEnvelope(e ClientEnvelope) {
	if !r.isDrawing(e.from) {
		log.Debug().Str("room", r.id).Str("player", e.from).Msg("dropping stroke from non-drawer")
		return
	}

	var seg StrokeSegment
	if e.stroke != nil {
		seg = *e.stroke
	} else {
		var p DrawPayload
		if err := decodePayload(e.data, &p); err != nil {
			log.Debug().Err(err).Str("room", r.id).Msg("bad draw payload")
			return
		}
		seg = StrokeSegment{X0: p.X0, Y0: p.Y0, X1: p.X1, Y1: p.Y1, Color: p.Color, LineWidth: p.LineWidth}
	}
	if !seg.Validate() {
		return
	}

	var jsonFrame, binFrame []byte
	for _, p := range r.players {
		if p.id == e.from {
			continue
		}
		if p.binaryStrokes {
			if binFrame == nil {
				binFrame = encodeStrokeFrame(seg)
			}
			r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p.player, data: binFrame, binary: true})
			continue
		}
		if jsonFrame == nil {
			jsonFrame = r.encode(EventDraw, DrawPayload{
				RoomID:    r.id,
				X0:        seg.X0,
				Y0:        seg.Y0,
				X1:        seg.X1,
				Y1:        seg.Y1,
				Color:     seg.Color,
				LineWidth: seg.LineWidth,
			})
		}
		r.dataSendTasks = append(r.dataSendTasks, dataSendTask{to: p.player, data: jsonFrame})
	}
}

func (r *room) handleClearCanvasEnvelope(e ClientEnvelope) {
	if !r.isDrawing(e.from) {
		return
	}
	r.broadcastExcept(e.from, EventClearCanvas, ClearCanvasPayload{RoomID: r.id})
}
