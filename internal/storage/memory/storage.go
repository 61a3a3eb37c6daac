package memory

import (
	"context"
	"sync"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.Player
	playerOrder []model.PlayerID
	nameIndex   map[string]model.PlayerID
	rooms       map[model.RoomID]*model.Room
	roomOrder   []model.RoomID
	games       map[model.GameID]*model.Game
	ships       map[fleetKey][]*model.Ship
	turns       map[model.GameID]*model.Turn
}

type fleetKey struct {
	gameID   model.GameID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.Player),
		nameIndex: make(map[string]model.PlayerID),
		rooms:     make(map[model.RoomID]*model.Room),
		games:     make(map[model.GameID]*model.Game),
		ships:     make(map[fleetKey][]*model.Ship),
		turns:     make(map[model.GameID]*model.Turn),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.playerOrder = append(s.playerOrder, player.ID)
	}
	s.players[player.ID] = player
	s.nameIndex[player.Name] = player.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.playerOrder))
	for _, id := range s.playerOrder {
		players = append(players, s.players[id])
	}
	return players, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		s.roomOrder = append(s.roomOrder, room.ID)
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		rooms = append(rooms, s.rooms[id])
	}
	return rooms, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

// Ship operations

func (s *Storage) SaveShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, ships []*model.Ship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fleetKey{gameID: gameID, playerID: playerID}
	fleet := make([]*model.Ship, len(ships))
	copy(fleet, ships)
	s.ships[key] = fleet
	return nil
}

func (s *Storage) GetShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Ship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := fleetKey{gameID: gameID, playerID: playerID}
	fleet := s.ships[key]
	result := make([]*model.Ship, len(fleet))
	copy(result, fleet)
	return result, nil
}

func (s *Storage) UpdateShip(ctx context.Context, ship *model.Ship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fleetKey{gameID: ship.GameID, playerID: ship.PlayerID}
	for i, stored := range s.ships[key] {
		if stored.ID == ship.ID {
			s.ships[key][i] = ship
			return nil
		}
	}
	return model.ErrShipNotFound
}

// Turn operations

func (s *Storage) SaveTurn(ctx context.Context, turn *model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.GameID] = turn
	return nil
}

func (s *Storage) GetTurnForGame(ctx context.Context, gameID model.GameID) (*model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turn, ok := s.turns[gameID]
	if !ok {
		return nil, model.ErrTurnNotFound
	}
	return turn, nil
}
