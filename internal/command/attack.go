package command

import (
	"context"
	"math"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
	"github.com/bitbybit/go-battleship/internal/services/game"
)

// attackHandler resolves a targeted attack and chains the follow-up
// protocol step: turn announcement, or finish plus winners refresh.
type attackHandler struct {
	base
}

// AttackEmitArgs carries resolved attack reports for the sending side
type AttackEmitArgs struct {
	AttackerID model.PlayerID
	OpponentID model.PlayerID
	Reports    []game.CellReport
}

func (h *attackHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	var req protocol.AttackRequest
	if err := env.DecodePayload(&req); err != nil {
		return err
	}

	// Non-integral coordinates never land on a cell
	if req.X != math.Trunc(req.X) || req.Y != math.Trunc(req.Y) {
		return model.ErrOutOfBounds
	}

	target := model.Position{X: int(req.X), Y: int(req.Y)}
	result, err := h.deps.Games.Attack(ctx, req.GameID, req.IndexPlayer, target)
	if err != nil {
		return err
	}

	return h.finishAttack(ctx, req.GameID, req.IndexPlayer, result)
}

func (h *attackHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(AttackEmitArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}

	for _, report := range emit.Reports {
		payload := protocol.AttackResponse{
			Position:      protocol.Position{X: report.Position.X, Y: report.Position.Y},
			CurrentPlayer: emit.AttackerID,
			Status:        report.Status,
		}
		if err := h.sendToPlayer(emit.AttackerID, protocol.TypeAttack, payload); err != nil {
			return err
		}
		if err := h.sendToPlayer(emit.OpponentID, protocol.TypeAttack, payload); err != nil {
			return err
		}
	}
	return nil
}

// finishAttack emits the attack reports and the follow-up step shared by
// targeted and random attacks.
func (b *base) finishAttack(ctx context.Context, gameID model.GameID, attackerID model.PlayerID, result *game.AttackResult) error {
	g, err := b.deps.Games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	opponentID := g.Opponent(attackerID)

	if err := b.invoker.Emit(ctx, protocol.TypeAttack, AttackEmitArgs{
		AttackerID: attackerID,
		OpponentID: opponentID,
		Reports:    result.Reports,
	}); err != nil {
		return err
	}

	if !result.Finished {
		return b.invoker.Emit(ctx, protocol.TypeTurn, TurnArgs{GameID: gameID})
	}

	if err := b.invoker.Emit(ctx, protocol.TypeFinish, FinishArgs{
		GameID: gameID,
		Winner: result.Winner,
	}); err != nil {
		return err
	}

	if err := b.deps.Winners.RecordWin(ctx, result.Winner); err != nil {
		return err
	}
	return b.invoker.Emit(ctx, protocol.TypeUpdateWinners, nil)
}

// randomAttackHandler lets the server pick the target cell; resolution
// and follow-up match a targeted attack.
type randomAttackHandler struct {
	base
}

func (h *randomAttackHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	var req protocol.RandomAttackRequest
	if err := env.DecodePayload(&req); err != nil {
		return err
	}

	result, err := h.deps.Games.RandomAttack(ctx, req.GameID, req.IndexPlayer)
	if err != nil {
		return err
	}

	return h.finishAttack(ctx, req.GameID, req.IndexPlayer, result)
}

func (h *randomAttackHandler) Emit(ctx context.Context, args any) error {
	return nil
}
