package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bitbybit/go-battleship/internal/dependencies/clock"
	"github.com/bitbybit/go-battleship/internal/dependencies/random"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

const (
	// RoomIDLength is the length of generated room ids
	RoomIDLength = 8
	// RoomIDAlphabet is the characters used in room ids
	RoomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Controller manages lobby lifecycle: create, join, list
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new room Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateRoom appends a new empty room owned by the given player
func (c *Controller) CreateRoom(ctx context.Context, ownerID model.PlayerID) (*model.Room, error) {
	room := &model.Room{
		ID:        model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet)),
		Player1ID: ownerID,
		CreatedAt: c.clock.Now(),
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(ownerID)),
	)

	return room, nil
}

// JoinRoom fills the second slot of an empty room. Joining a full room
// reports the room as not found, matching the lookup the clients rely on.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, joinerID model.PlayerID) (*model.Room, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.IsFull() {
		return nil, model.ErrRoomNotFound
	}
	if room.HasPlayer(joinerID) {
		return nil, model.ErrAlreadyInRoom
	}

	room.Player2ID = &joinerID
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room joined",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(joinerID)),
	)

	return room, nil
}

// ListRooms renders every stored room, full or not, with its occupants.
// The source protocol exposes full rooms too; clients filter on their side.
func (c *Controller) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := model.RoomSummary{RoomID: room.ID}

		occupant, err := c.occupant(ctx, room.Player1ID)
		if err != nil {
			return nil, err
		}
		summary.Occupants = append(summary.Occupants, occupant)

		if room.Player2ID != nil {
			occupant, err := c.occupant(ctx, *room.Player2ID)
			if err != nil {
				return nil, err
			}
			summary.Occupants = append(summary.Occupants, occupant)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (c *Controller) occupant(ctx context.Context, playerID model.PlayerID) (model.RoomOccupant, error) {
	player, err := c.storage.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			// Player record aged out; keep the slot with an empty name
			return model.RoomOccupant{PlayerID: playerID}, nil
		}
		return model.RoomOccupant{}, err
	}
	return model.RoomOccupant{Name: player.Name, PlayerID: player.ID}, nil
}
