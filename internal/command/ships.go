package command

import (
	"context"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
	"github.com/bitbybit/go-battleship/internal/services/game"
)

// addShipsHandler materializes a player's fleet; once both fleets are on
// record it starts the game and announces the opening turn.
type addShipsHandler struct {
	base
}

func (h *addShipsHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	var req protocol.AddShipsRequest
	if err := env.DecodePayload(&req); err != nil {
		return err
	}

	specs := make([]game.ShipSpec, 0, len(req.Ships))
	for _, spec := range req.Ships {
		specs = append(specs, game.ShipSpec{
			Position: model.Position{X: spec.Position.X, Y: spec.Position.Y},
			Vertical: spec.Direction,
			Length:   spec.Length,
			Type:     spec.Type,
		})
	}

	g, started, err := h.deps.Games.SubmitShips(ctx, req.GameID, req.IndexPlayer, specs)
	if err != nil {
		return err
	}

	if !started {
		return nil
	}

	if err := h.invoker.Emit(ctx, protocol.TypeStartGame, StartGameArgs{Game: g}); err != nil {
		return err
	}
	return h.invoker.Emit(ctx, protocol.TypeTurn, TurnArgs{GameID: g.ID})
}

func (h *addShipsHandler) Emit(ctx context.Context, args any) error {
	return nil
}

// startGameHandler is emit-only: each player receives their own ship
// layout only, never the opponent's, plus the opening turn holder.
type startGameHandler struct {
	base
}

// StartGameArgs carries the game whose start should be announced
type StartGameArgs struct {
	Game *model.Game
}

func (h *startGameHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(StartGameArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}

	holder, err := h.deps.Games.CurrentTurn(ctx, emit.Game.ID)
	if err != nil {
		return err
	}

	for _, playerID := range []model.PlayerID{emit.Game.Player1ID, emit.Game.Player2ID} {
		ships, err := h.deps.Games.PlayerShips(ctx, emit.Game.ID, playerID)
		if err != nil {
			return err
		}

		specs := make([]protocol.ShipSpec, 0, len(ships))
		for _, ship := range ships {
			specs = append(specs, protocol.ShipSpec{
				Position:  protocol.Position{X: ship.Position.X, Y: ship.Position.Y},
				Direction: ship.Vertical,
				Length:    ship.Length,
				Type:      ship.Type,
			})
		}

		err = h.sendToPlayer(playerID, protocol.TypeStartGame, protocol.StartGameResponse{
			Ships:              specs,
			CurrentPlayerIndex: holder,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
