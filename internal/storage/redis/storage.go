package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	key := playerKey(player.ID)

	isNew, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.Set(ctx, nameIndexKey(player.Name), string(player.ID), 0)
	if isNew == 0 {
		pipe.RPush(ctx, playerOrderKey(), string(player.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	id, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, playerOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.GetPlayer(ctx, model.PlayerID(id))
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				continue
			}
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	key := roomKey(room.ID)

	isNew, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.RoomTTL)
	if isNew == 0 {
		pipe.RPush(ctx, roomOrderKey(), string(room.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.LRange(ctx, roomOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.GetRoom(ctx, model.RoomID(id))
		if err != nil {
			if errors.Is(err, model.ErrRoomNotFound) {
				// Expired under TTL; drop from the listing
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// Ship operations

func (s *Storage) SaveShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, ships []*model.Ship) error {
	data, err := json.Marshal(ships)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, fleetKey(gameID, playerID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Ship, error) {
	data, err := s.client.Get(ctx, fleetKey(gameID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var ships []*model.Ship
	if err := json.Unmarshal(data, &ships); err != nil {
		return nil, err
	}
	return ships, nil
}

func (s *Storage) UpdateShip(ctx context.Context, ship *model.Ship) error {
	ships, err := s.GetShips(ctx, ship.GameID, ship.PlayerID)
	if err != nil {
		return err
	}

	for i, stored := range ships {
		if stored.ID == ship.ID {
			ships[i] = ship
			return s.SaveShips(ctx, ship.GameID, ship.PlayerID, ships)
		}
	}
	return model.ErrShipNotFound
}

// Turn operations

func (s *Storage) SaveTurn(ctx context.Context, turn *model.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, turnKey(turn.GameID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetTurnForGame(ctx context.Context, gameID model.GameID) (*model.Turn, error) {
	data, err := s.client.Get(ctx, turnKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTurnNotFound
		}
		return nil, err
	}

	var turn model.Turn
	if err := json.Unmarshal(data, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}
