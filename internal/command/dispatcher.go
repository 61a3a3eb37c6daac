package command

import (
	"context"
	"log/slog"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
	"github.com/bitbybit/go-battleship/internal/services/auth"
	"github.com/bitbybit/go-battleship/internal/services/game"
	"github.com/bitbybit/go-battleship/internal/services/room"
	"github.com/bitbybit/go-battleship/internal/services/winners"
)

// Sender delivers encoded envelopes to live connections
type Sender interface {
	Send(connID string, data []byte) error
	Broadcast(data []byte)
}

// Invoker lets a handler chain another command's emit side without
// holding the dispatcher itself.
type Invoker interface {
	Emit(ctx context.Context, msgType string, args any) error
}

// Handler owns both directions of one command type. OnReceive reacts to a
// client-originated message; Emit produces and sends the server-originated
// message of the same type and is callable by other handlers for chaining.
type Handler interface {
	OnReceive(ctx context.Context, env *protocol.Envelope, connID string) error
	Emit(ctx context.Context, args any) error
}

// Deps are the shared collaborators handed to every handler
type Deps struct {
	Auth    *auth.Service
	Rooms   *room.Controller
	Games   *game.Controller
	Winners *winners.Service
	Sender  Sender
	Logger  *slog.Logger
}

// Dispatcher validates inbound envelopes and routes them to the fixed
// registry of handler singletons. All handlers are constructed eagerly.
type Dispatcher struct {
	registry map[string]Handler
	logger   *slog.Logger
}

// Ensure the dispatcher satisfies the chaining capability
var _ Invoker = (*Dispatcher)(nil)

// NewDispatcher builds the registry with one handler instance per type
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		logger: deps.Logger,
	}

	b := base{deps: deps, invoker: d}

	d.registry = map[string]Handler{
		protocol.TypeReg:           &regHandler{base: b},
		protocol.TypeCreateRoom:    &createRoomHandler{base: b},
		protocol.TypeAddUserToRoom: &addUserToRoomHandler{base: b},
		protocol.TypeCreateGame:    &createGameHandler{base: b},
		protocol.TypeUpdateRoom:    &updateRoomHandler{base: b},
		protocol.TypeAddShips:      &addShipsHandler{base: b},
		protocol.TypeStartGame:     &startGameHandler{base: b},
		protocol.TypeAttack:        &attackHandler{base: b},
		protocol.TypeRandomAttack:  &randomAttackHandler{base: b},
		protocol.TypeTurn:          &turnHandler{base: b},
		protocol.TypeFinish:        &finishHandler{base: b},
		protocol.TypeUpdateWinners: &updateWinnersHandler{base: b},
	}

	return d
}

// Resolve validates the envelope and looks up its handler
func (d *Dispatcher) Resolve(env *protocol.Envelope) (Handler, error) {
	handler, ok := d.registry[env.Type]
	if !ok {
		return nil, model.ErrUnknownCommand
	}
	return handler, nil
}

// Dispatch handles one inbound frame end to end. Handler errors are
// logged and swallowed; the originating connection is never closed and no
// generic error frame is sent.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte, connID string) {
	env, err := protocol.Decode(raw)
	if err != nil {
		d.logger.Warn("dropping malformed message",
			slog.String("conn_id", connID),
			slog.String("error", err.Error()),
		)
		return
	}

	d.logger.Info("command received",
		slog.String("type", env.Type),
		slog.String("conn_id", connID),
	)

	handler, err := d.Resolve(env)
	if err != nil {
		d.logger.Warn("no handler for command",
			slog.String("type", env.Type),
			slog.String("conn_id", connID),
		)
		return
	}

	if err := handler.OnReceive(ctx, env, connID); err != nil {
		d.logger.Error("command failed",
			slog.String("type", env.Type),
			slog.String("conn_id", connID),
			slog.String("error", err.Error()),
		)
	}
}

// Emit routes a chained emit to the target handler singleton
func (d *Dispatcher) Emit(ctx context.Context, msgType string, args any) error {
	handler, ok := d.registry[msgType]
	if !ok {
		return model.ErrUnknownCommand
	}
	return handler.Emit(ctx, args)
}
