package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/bitbybit/go-battleship/internal/dependencies/clock"
	"github.com/bitbybit/go-battleship/internal/dependencies/random"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

const (
	// PlayerIDLength is the length of generated player ids
	PlayerIDLength = 12
	// IDAlphabet is the characters used in generated ids
	IDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Service handles player registration and tracks which live connections
// belong to which players. Sessions are connection-scoped and deliberately
// not persisted: they are meaningless across restarts.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu          sync.RWMutex
	connPlayer  map[string]model.PlayerID
	playerConns map[model.PlayerID]map[string]struct{}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage:     storage,
		clock:       clock,
		random:      random,
		logger:      logger,
		connPlayer:  make(map[string]model.PlayerID),
		playerConns: make(map[model.PlayerID]map[string]struct{}),
	}
}

// Register logs a player in, creating the record on first sight of the name.
// The same name+password pair always resolves to the same player; a known
// name with a different password is rejected.
func (s *Service) Register(ctx context.Context, name, password string) (*model.Player, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(password) == "" {
		return nil, model.ErrInvalidName
	}

	existing, err := s.storage.GetPlayerByName(ctx, name)
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			return nil, model.ErrInvalidCredentials
		}
		return existing, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:           model.PlayerID(s.random.String(PlayerIDLength, IDAlphabet)),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
	)

	return player, nil
}

// Attach binds a connection to a player. Re-attaching the same pair is a
// no-op; a connection switching players drops its previous binding.
func (s *Service) Attach(connID string, playerID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.connPlayer[connID]; ok {
		if prev == playerID {
			return
		}
		delete(s.playerConns[prev], connID)
	}

	s.connPlayer[connID] = playerID
	if s.playerConns[playerID] == nil {
		s.playerConns[playerID] = make(map[string]struct{})
	}
	s.playerConns[playerID][connID] = struct{}{}
}

// Detach removes a connection's binding, if any
func (s *Service) Detach(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerID, ok := s.connPlayer[connID]
	if !ok {
		return
	}
	delete(s.connPlayer, connID)
	delete(s.playerConns[playerID], connID)
	if len(s.playerConns[playerID]) == 0 {
		delete(s.playerConns, playerID)
	}
}

// PlayerIDForConn resolves the player bound to a connection
func (s *Service) PlayerIDForConn(connID string) (model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playerID, ok := s.connPlayer[connID]
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	return playerID, nil
}

// ConnIDsForPlayer returns every live connection bound to the player
func (s *Service) ConnIDsForPlayer(playerID model.PlayerID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := make([]string, 0, len(s.playerConns[playerID]))
	for connID := range s.playerConns[playerID] {
		conns = append(conns, connID)
	}
	return conns
}
