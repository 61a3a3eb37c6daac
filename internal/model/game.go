package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the lifecycle of a game
type GameState string

const (
	GameStateAwaitingShips GameState = "awaiting_ships" // created, fleets not yet placed
	GameStateInProgress    GameState = "in_progress"    // both fleets placed, attacks running
	GameStateFinished      GameState = "finished"       // one fleet destroyed; terminal
)

// AttackStatus is the outcome of a single attack
type AttackStatus string

const (
	AttackStatusMiss   AttackStatus = "miss"
	AttackStatusShot   AttackStatus = "shot"
	AttackStatusKilled AttackStatus = "killed"
)

// Game is a match between exactly two distinct players drawn from a full
// room. Finished games are retired, never deleted.
type Game struct {
	ID         GameID
	Player1ID  PlayerID
	Player2ID  PlayerID
	State      GameState
	LastAttack *AttackStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasPlayer reports whether the given player participates in the game
func (g *Game) HasPlayer(id PlayerID) bool {
	return g.Player1ID == id || g.Player2ID == id
}

// Opponent returns the other participant.
// The caller must ensure the player is part of the game.
func (g *Game) Opponent(id PlayerID) PlayerID {
	if g.Player1ID == id {
		return g.Player2ID
	}
	return g.Player1ID
}

// TurnID uniquely identifies a turn record
type TurnID string

// Turn tracks which player currently holds the attack right for a game.
// Exactly one live record per game, created lazily and mutated in place.
type Turn struct {
	ID       TurnID
	GameID   GameID
	PlayerID PlayerID
}
