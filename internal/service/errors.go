package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")
)

// Room service specific errors
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidRoomName = errors.New("room name must be 1-50 characters")
	ErrInvalidPassword = errors.New("invalid room password")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyInRoom   = errors.New("already a member of this room")
)

// Matchmaking service specific errors
var (
	ErrAlreadyQueued = errors.New("already in matchmaking queue")
	ErrBusy          = errors.New("cannot queue while in a match")
	ErrNotQueued     = errors.New("no matchmaking entry to cancel")
)

// Match service specific errors
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchNotInProgress = errors.New("match is not in progress")
)

// Social service specific errors
var (
	ErrInvalidTarget = errors.New("cannot target yourself")
)

// Presence specific errors
var (
	ErrInvalidStatus = errors.New("invalid presence status")
)
