package command

import (
	"context"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
)

// createRoomHandler appends a new empty room owned by the caller
type createRoomHandler struct {
	base
}

func (h *createRoomHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	playerID, err := h.deps.Auth.PlayerIDForConn(connID)
	if err != nil {
		return err
	}

	if _, err := h.deps.Rooms.CreateRoom(ctx, playerID); err != nil {
		return err
	}

	return h.invoker.Emit(ctx, protocol.TypeUpdateRoom, nil)
}

func (h *createRoomHandler) Emit(ctx context.Context, args any) error {
	return nil
}

// addUserToRoomHandler joins the caller into an empty room; the now-full
// room immediately spawns its game.
type addUserToRoomHandler struct {
	base
}

func (h *addUserToRoomHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	var req protocol.AddUserToRoomRequest
	if err := env.DecodePayload(&req); err != nil {
		return err
	}

	joinerID, err := h.deps.Auth.PlayerIDForConn(connID)
	if err != nil {
		return err
	}

	room, err := h.deps.Rooms.JoinRoom(ctx, req.IndexRoom, joinerID)
	if err != nil {
		return err
	}

	if err := h.invoker.Emit(ctx, protocol.TypeCreateGame, CreateGameArgs{Room: room}); err != nil {
		return err
	}
	return h.invoker.Emit(ctx, protocol.TypeUpdateRoom, nil)
}

func (h *addUserToRoomHandler) Emit(ctx context.Context, args any) error {
	return nil
}

// createGameHandler is emit-only: it allocates the game for a full room
// and tells each member their assigned game and player id.
type createGameHandler struct {
	base
}

// CreateGameArgs carries the full room a game should be created from
type CreateGameArgs struct {
	Room *model.Room
}

func (h *createGameHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(CreateGameArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}

	game, err := h.deps.Games.CreateGame(ctx, emit.Room)
	if err != nil {
		return err
	}

	for _, playerID := range []model.PlayerID{game.Player1ID, game.Player2ID} {
		err := h.sendToPlayer(playerID, protocol.TypeCreateGame, protocol.CreateGameResponse{
			IDGame:   game.ID,
			IDPlayer: playerID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// updateRoomHandler is emit-only: it broadcasts the full room listing to
// every connection. Full rooms are listed too; clients filter.
type updateRoomHandler struct {
	base
}

func (h *updateRoomHandler) Emit(ctx context.Context, args any) error {
	summaries, err := h.deps.Rooms.ListRooms(ctx)
	if err != nil {
		return err
	}

	entries := make([]protocol.RoomUpdateEntry, 0, len(summaries))
	for _, summary := range summaries {
		entry := protocol.RoomUpdateEntry{
			RoomID:    summary.RoomID,
			RoomUsers: make([]protocol.RoomUser, 0, len(summary.Occupants)),
		}
		for _, occupant := range summary.Occupants {
			entry.RoomUsers = append(entry.RoomUsers, protocol.RoomUser{
				Name:  occupant.Name,
				Index: occupant.PlayerID,
			})
		}
		entries = append(entries, entry)
	}

	return h.broadcast(protocol.TypeUpdateRoom, entries)
}
