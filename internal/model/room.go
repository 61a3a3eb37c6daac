package model

import "time"

// RoomID uniquely identifies a lobby slot
type RoomID string

// Room is a two-slot lobby. Player2ID is nil while the room waits for a
// second participant; it is set exactly once. Full rooms are excluded from
// joining but never deleted.
type Room struct {
	ID        RoomID
	Player1ID PlayerID
	Player2ID *PlayerID
	CreatedAt time.Time
}

// IsFull reports whether both slots are occupied
func (r *Room) IsFull() bool {
	return r.Player2ID != nil
}

// HasPlayer reports whether the given player occupies either slot
func (r *Room) HasPlayer(id PlayerID) bool {
	if r.Player1ID == id {
		return true
	}
	return r.Player2ID != nil && *r.Player2ID == id
}

// RoomOccupant is a rendered room member for room listings
type RoomOccupant struct {
	Name     string
	PlayerID PlayerID
}

// RoomSummary is a room rendered with its current occupants
type RoomSummary struct {
	RoomID    RoomID
	Occupants []RoomOccupant
}
