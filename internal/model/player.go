package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a registered participant.
// Identity is the name+password pair; the ID is stable once created.
type Player struct {
	ID           PlayerID
	Name         string
	PasswordHash string // bcrypt hash
	Wins         int
	CreatedAt    time.Time
}

// Session binds a live connection to a player.
// Identical pairs collapse (set semantics).
type Session struct {
	PlayerID PlayerID
	ConnID   string
}
