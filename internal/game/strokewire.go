package game

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the binary stroke frame.
const (
	strokeFieldX0        protowire.Number = 1
	strokeFieldY0        protowire.Number = 2
	strokeFieldX1        protowire.Number = 3
	strokeFieldY1        protowire.Number = 4
	strokeFieldColor     protowire.Number = 5
	strokeFieldLineWidth protowire.Number = 6
)

func appendFloatField(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(float32(v)))
}

func encodeStrokeFrame(s StrokeSegment) []byte {
	b := make([]byte, 0, 40+len(s.Color))
	b = appendFloatField(b, strokeFieldX0, s.X0)
	b = appendFloatField(b, strokeFieldY0, s.Y0)
	b = appendFloatField(b, strokeFieldX1, s.X1)
	b = appendFloatField(b, strokeFieldY1, s.Y1)
	if s.Color != "" {
		b = protowire.AppendTag(b, strokeFieldColor, protowire.BytesType)
		b = protowire.AppendString(b, s.Color)
	}
	b = appendFloatField(b, strokeFieldLineWidth, s.LineWidth)
	return b
}

func decodeStrokeFrame(b []byte) (StrokeSegment, error) {
	var s StrokeSegment
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return StrokeSegment{}, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.Fixed32Type && num != strokeFieldColor:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return StrokeSegment{}, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(n))
			}
			b = b[n:]
			f := float64(math.Float32frombits(v))
			switch num {
			case strokeFieldX0:
				s.X0 = f
			case strokeFieldY0:
				s.Y0 = f
			case strokeFieldX1:
				s.X1 = f
			case strokeFieldY1:
				s.Y1 = f
			case strokeFieldLineWidth:
				s.LineWidth = f
			}
		case typ == protowire.BytesType && num == strokeFieldColor:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return StrokeSegment{}, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(n))
			}
			b = b[n:]
			s.Color = v
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return StrokeSegment{}, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return s, nil
}
