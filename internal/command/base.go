package command

import (
	"context"
	"log/slog"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
)

// base carries the shared collaborators and send helpers for handlers
type base struct {
	deps    Deps
	invoker Invoker
}

// OnReceive ignores client copies of server-originated message types
func (b *base) OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error {
	return nil
}

// sendToConn encodes and delivers one message to a single connection
func (b *base) sendToConn(connID string, msgType string, payload any) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}
	if err := b.deps.Sender.Send(connID, data); err != nil {
		return err
	}

	b.deps.Logger.Info("command sent",
		slog.String("type", msgType),
		slog.String("conn_id", connID),
	)
	return nil
}

// sendToPlayer delivers one message to every live connection of a player.
// A player with no live connection is skipped, not an error: the game
// continues even if one side dropped.
func (b *base) sendToPlayer(playerID model.PlayerID, msgType string, payload any) error {
	for _, connID := range b.deps.Auth.ConnIDsForPlayer(playerID) {
		if err := b.sendToConn(connID, msgType, payload); err != nil {
			return err
		}
	}
	return nil
}

// broadcast delivers one message to every open connection
func (b *base) broadcast(msgType string, payload any) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}
	b.deps.Sender.Broadcast(data)

	b.deps.Logger.Info("command broadcast",
		slog.String("type", msgType),
	)
	return nil
}
