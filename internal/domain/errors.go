package domain

import "errors"

// Signaling failures reported back to the originating connection.
// These are recoverable: they go out on the ack channel and never take
// down the relay or touch other rooms.
var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomEnded    = errors.New("room has ended")
	ErrRoomFull     = errors.New("room is full")
	ErrNotBound     = errors.New("not bound to a room")
	ErrAlreadyBound = errors.New("already bound to a room")
)

// ErrorCode maps a signaling error to the wire-level error code carried
// in acknowledgment frames.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomExists):
		return "AlreadyExists"
	case errors.Is(err, ErrRoomNotFound):
		return "NotFound"
	case errors.Is(err, ErrRoomEnded):
		return "Ended"
	case errors.Is(err, ErrRoomFull):
		return "Full"
	case errors.Is(err, ErrNotBound):
		return "NotBound"
	case errors.Is(err, ErrAlreadyBound):
		return "AlreadyBound"
	default:
		return "Internal"
	}
}
