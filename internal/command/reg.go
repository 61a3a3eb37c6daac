package command

import (
	"context"
	"errors"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
)

// regHandler logs a player in or creates the account, binds the
// connection to the player, and refreshes the room and winners views.
// This is the only command with a structured error reply.
type regHandler struct {
	base
}

// RegEmitArgs addresses a reg reply to one connection
type RegEmitArgs struct {
	ConnID   string
	Response protocol.RegResponse
}

func (h *regHandler) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	var req protocol.RegRequest
	if err := env.DecodePayload(&req); err != nil {
		return err
	}

	player, err := h.deps.Auth.Register(ctx, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidName) || errors.Is(err, model.ErrInvalidCredentials) {
			return h.invoker.Emit(ctx, protocol.TypeReg, RegEmitArgs{
				ConnID: connID,
				Response: protocol.RegResponse{
					Error:     true,
					ErrorText: err.Error(),
					Index:     "",
					Name:      req.Name,
				},
			})
		}
		return err
	}

	h.deps.Auth.Attach(connID, player.ID)

	if err := h.invoker.Emit(ctx, protocol.TypeReg, RegEmitArgs{
		ConnID: connID,
		Response: protocol.RegResponse{
			Index: player.ID,
			Name:  player.Name,
		},
	}); err != nil {
		return err
	}

	if err := h.invoker.Emit(ctx, protocol.TypeUpdateRoom, nil); err != nil {
		return err
	}
	return h.invoker.Emit(ctx, protocol.TypeUpdateWinners, nil)
}

func (h *regHandler) Emit(ctx context.Context, args any) error {
	emit, ok := args.(RegEmitArgs)
	if !ok {
		return model.ErrMalformedEnvelope
	}
	return h.sendToConn(emit.ConnID, protocol.TypeReg, emit.Response)
}
