package winners

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

// Standing is one row of the winners table
type Standing struct {
	Name string
	Wins int
}

// Service keeps cumulative win counters and produces the ranked table
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new winners Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// RecordWin increments the player's cumulative win counter
func (s *Service) RecordWin(ctx context.Context, playerID model.PlayerID) error {
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	player.Wins++
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return err
	}

	s.logger.Info("win recorded",
		slog.String("player_id", string(playerID)),
		slog.Int("wins", player.Wins),
	)

	return nil
}

// Ranking lists every player with at least one win, sorted ascending by
// win count. The ascending order is the established wire behavior; clients
// depend on it, so it is not inverted here.
func (s *Service) Ranking(ctx context.Context) ([]Standing, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(players))
	for _, player := range players {
		if player.Wins > 0 {
			standings = append(standings, Standing{Name: player.Name, Wins: player.Wins})
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Wins < standings[j].Wins
	})

	return standings, nil
}
