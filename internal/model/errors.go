package model

import "errors"

// Common errors used across the application
var (
	// Protocol errors
	ErrMalformedEnvelope = errors.New("malformed message envelope")
	ErrUnknownCommand    = errors.New("unknown command type")

	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidName        = errors.New("name and password must be non-empty")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrAlreadyInRoom  = errors.New("player is already in room")
	ErrRoomIncomplete = errors.New("room does not have two players")

	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrGameFinished    = errors.New("game is already finished")
	ErrTurnNotFound    = errors.New("turn not found")
	ErrNoShips         = errors.New("ship set must not be empty")
	ErrShipNotFound    = errors.New("ship not found")
	ErrShipsAlreadySet = errors.New("player's ships are already placed")
	ErrOutOfBounds     = errors.New("attack coordinates out of bounds")
	ErrNotYourTurn     = errors.New("not this player's turn")
)
