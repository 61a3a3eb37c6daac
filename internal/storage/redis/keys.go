package redis

import (
	"fmt"

	"github.com/bitbybit/go-battleship/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "battleship"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// nameIndexKey returns the Redis key for the name -> player_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// playerOrderKey returns the Redis key for the LIST of player ids in
// registration order
func playerOrderKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomOrderKey returns the Redis key for the LIST of room ids in
// creation order
func roomOrderKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// fleetKey returns the Redis key for a player's ship set within a game
func fleetKey(gameID model.GameID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:fleet:%s:%s", keyPrefix, gameID, playerID)
}

// turnKey returns the Redis key for a game's turn record
func turnKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:turn:%s", keyPrefix, gameID)
}
