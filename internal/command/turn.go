package command

import (
	"context"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
)

// turnHandler is emit-only: it announces the current turn holder to both
// players of a game.
type turnHandler struct {
	base
}

// TurnArgs names the game whose turn should be announced
type TurnArgs struct {
	GameID model.GameID
}

func (h *turnHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(TurnArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}

	game, err := h.deps.Games.GetGame(ctx, emit.GameID)
	if err != nil {
		return err
	}

	holder, err := h.deps.Games.CurrentTurn(ctx, emit.GameID)
	if err != nil {
		return err
	}

	payload := protocol.TurnResponse{CurrentPlayer: holder}
	for _, playerID := range []model.PlayerID{game.Player1ID, game.Player2ID} {
		if err := h.sendToPlayer(playerID, protocol.TypeTurn, payload); err != nil {
			return err
		}
	}
	return nil
}

// finishHandler is emit-only: it names the winner to both players
type finishHandler struct {
	base
}

// FinishArgs names the finished game and its winner
type FinishArgs struct {
	GameID model.GameID
	Winner model.PlayerID
}

func (h *finishHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(FinishArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}

	game, err := h.deps.Games.GetGame(ctx, emit.GameID)
	if err != nil {
		return err
	}

	payload := protocol.FinishResponse{WinPlayer: emit.Winner}
	for _, playerID := range []model.PlayerID{game.Player1ID, game.Player2ID} {
		if err := h.sendToPlayer(playerID, protocol.TypeFinish, payload); err != nil {
			return err
		}
	}
	return nil
}

// updateWinnersHandler is emit-only: it broadcasts the winners table to
// every connection.
type updateWinnersHandler struct {
	base
}

func (h *updateWinnersHandler) Emit(ctx context.Context, args any) error {
	standings, err := h.deps.Winners.Ranking(ctx)
	if err != nil {
		return err
	}

	entries := make([]protocol.WinnersEntry, 0, len(standings))
	for _, standing := range standings {
		entries = append(entries, protocol.WinnersEntry{
			Name: standing.Name,
			Wins: standing.Wins,
		})
	}

	return h.broadcast(protocol.TypeUpdateWinners, entries)
}
