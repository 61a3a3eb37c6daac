package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/bitbybit/go-battleship/internal/command"
	"github.com/bitbybit/go-battleship/internal/dependencies/clock"
	"github.com/bitbybit/go-battleship/internal/dependencies/random"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/services/auth"
	"github.com/bitbybit/go-battleship/internal/services/game"
	"github.com/bitbybit/go-battleship/internal/services/room"
	"github.com/bitbybit/go-battleship/internal/services/winners"
	"github.com/bitbybit/go-battleship/internal/storage"
	"github.com/bitbybit/go-battleship/internal/storage/memory"
	redisstorage "github.com/bitbybit/go-battleship/internal/storage/redis"
	"github.com/bitbybit/go-battleship/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	RoomController *room.Controller
	GameController *game.Controller
	WinnersService *winners.Service

	// Protocol plumbing
	Dispatcher *command.Dispatcher
	Supervisor *ws.Supervisor
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Bounds is the play desk extent; zero value means the default 10x10
	Bounds model.Bounds
	// Supervisor holds heartbeat tuning; zero values mean defaults
	Supervisor ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	bounds := cfg.Bounds
	if bounds == (model.Bounds{}) {
		bounds = model.DefaultBounds()
	}

	return newWithDependencies(store, clock.New(), random.New(), bounds, cfg.Supervisor, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	bounds model.Bounds,
	supervisorCfg ws.Config,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, rnd, logger)
	roomController := room.NewController(store, clk, rnd, logger)
	gameController := game.NewController(store, clk, rnd, bounds, logger)
	winnersService := winners.New(store, logger)

	// The dispatcher needs the supervisor to send, the supervisor needs
	// the dispatcher to receive; the sender proxy breaks the ordering.
	sender := &senderProxy{}

	dispatcher := command.NewDispatcher(command.Deps{
		Auth:    authService,
		Rooms:   roomController,
		Games:   gameController,
		Winners: winnersService,
		Sender:  sender,
		Logger:  logger,
	})

	supervisor := ws.New(dispatcher, authService, rnd, supervisorCfg, logger)
	sender.Supervisor = supervisor

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		RoomController: roomController,
		GameController: gameController,
		WinnersService: winnersService,
		Dispatcher:     dispatcher,
		Supervisor:     supervisor,
	}
}

// senderProxy defers sender resolution until the supervisor exists
type senderProxy struct {
	Supervisor *ws.Supervisor
}

func (p *senderProxy) Send(connID string, data []byte) error {
	if p.Supervisor == nil {
		return nil
	}
	return p.Supervisor.Send(connID, data)
}

func (p *senderProxy) Broadcast(data []byte) {
	if p.Supervisor == nil {
		return
	}
	p.Supervisor.Broadcast(data)
}
