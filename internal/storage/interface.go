package storage

import (
	"context"

	"github.com/bitbybit/go-battleship/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)

	// Ship operations
	// SaveShips replaces a player's fleet for the game.
	SaveShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, ships []*model.Ship) error
	// GetShips returns the fleet in stored order; empty when none placed.
	GetShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Ship, error)
	UpdateShip(ctx context.Context, ship *model.Ship) error

	// Turn operations
	SaveTurn(ctx context.Context, turn *model.Turn) error
	GetTurnForGame(ctx context.Context, gameID model.GameID) (*model.Turn, error)
}
