package game

import "errors"

var (
	ErrRoomClosed     = errors.New("room-closed")
	ErrUnknownEvent   = errors.New("unknown-event")
	ErrMalformedFrame = errors.New("malformed-frame")
)

var ErrSendBufferFull = errors.New("send-buffer-full")
