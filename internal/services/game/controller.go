package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bitbybit/go-battleship/internal/dependencies/clock"
	"github.com/bitbybit/go-battleship/internal/dependencies/random"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 12
	// IDAlphabet is the characters used in generated ids
	IDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ShipSpec describes one ship of a player's placement submission
type ShipSpec struct {
	Position model.Position
	Vertical bool
	Length   int
	Type     model.ShipType
}

// CellReport is one outbound attack report: a cell and its resolved status
type CellReport struct {
	Position model.Position
	Status   model.AttackStatus
}

// AttackResult is the full outcome of one attack resolution
type AttackResult struct {
	// Status is the primary outcome recorded on the game
	Status model.AttackStatus
	// Reports carries one entry per cell to announce: the target cell,
	// plus, on a kill, every footprint cell and the surrounding buffer
	Reports []CellReport
	// NextPlayer holds the turn after resolution
	NextPlayer model.PlayerID
	// Finished is true when the attack destroyed the last opposing ship
	Finished bool
	// Winner is set when Finished
	Winner model.PlayerID
}

// Controller manages per-match state: placement, turn ownership, attack
// resolution, and win detection. All mutation of a single game's state runs
// under that game's lock, so two attackers can never interleave on one game.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	bounds  model.Bounds

	mu    sync.Mutex
	locks map[model.GameID]*sync.Mutex
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	bounds model.Bounds,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		bounds:  bounds,
		locks:   make(map[model.GameID]*sync.Mutex),
	}
}

// Bounds returns the play desk extent
func (c *Controller) Bounds() model.Bounds {
	return c.bounds
}

// lockFor returns the exclusive section for one game id
func (c *Controller) lockFor(gameID model.GameID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[gameID] = lock
	}
	return lock
}

// CreateGame allocates a new game for the two players of a full room
func (c *Controller) CreateGame(ctx context.Context, room *model.Room) (*model.Game, error) {
	if !room.IsFull() {
		return nil, model.ErrRoomIncomplete
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:        model.GameID(c.random.String(GameIDLength, IDAlphabet)),
		Player1ID: room.Player1ID,
		Player2ID: *room.Player2ID,
		State:     model.GameStateAwaitingShips,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("room_id", string(room.ID)),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// SubmitShips materializes a player's fleet. The returned flag is true when
// this submission completed both fleets and moved the game in progress.
func (c *Controller) SubmitShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, specs []ShipSpec) (*model.Game, bool, error) {
	lock := c.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, false, err
	}
	if !game.HasPlayer(playerID) {
		return nil, false, model.ErrPlayerNotFound
	}
	if game.State == model.GameStateFinished {
		return nil, false, model.ErrGameFinished
	}
	if len(specs) == 0 {
		return nil, false, model.ErrNoShips
	}

	// Fleets are placed exactly once per player; a re-submission would
	// replace damaged ships with fresh ones
	existing, err := c.storage.GetShips(ctx, gameID, playerID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return nil, false, model.ErrShipsAlreadySet
	}

	ships := make([]*model.Ship, len(specs))
	for i, spec := range specs {
		ships[i] = &model.Ship{
			ID:       model.ShipID(c.random.String(GameIDLength, IDAlphabet)),
			GameID:   gameID,
			PlayerID: playerID,
			Type:     spec.Type,
			Position: spec.Position,
			Vertical: spec.Vertical,
			Length:   spec.Length,
			Life:     spec.Length,
		}
	}

	if err := c.storage.SaveShips(ctx, gameID, playerID, ships); err != nil {
		return nil, false, err
	}

	opponentShips, err := c.storage.GetShips(ctx, gameID, game.Opponent(playerID))
	if err != nil {
		return nil, false, err
	}

	started := false
	if len(opponentShips) > 0 && game.State == model.GameStateAwaitingShips {
		game.State = model.GameStateInProgress
		game.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveGame(ctx, game); err != nil {
			return nil, false, err
		}
		started = true

		c.logger.Info("game started",
			slog.String("game_id", string(gameID)),
		)
	}

	return game, started, nil
}

// PlayerShips returns the stored fleet of one player
func (c *Controller) PlayerShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID) ([]*model.Ship, error) {
	return c.storage.GetShips(ctx, gameID, playerID)
}

// CurrentTurn returns the turn holder, creating the record on first use
// with a uniform coin flip between the two players.
func (c *Controller) CurrentTurn(ctx context.Context, gameID model.GameID) (model.PlayerID, error) {
	lock := c.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	return c.currentTurnLocked(ctx, gameID)
}

func (c *Controller) currentTurnLocked(ctx context.Context, gameID model.GameID) (model.PlayerID, error) {
	turn, err := c.storage.GetTurnForGame(ctx, gameID)
	if err == nil {
		return turn.PlayerID, nil
	}
	if !errors.Is(err, model.ErrTurnNotFound) {
		return "", err
	}

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}

	holder := game.Player1ID
	if c.random.Bool() {
		holder = game.Player2ID
	}

	turn = &model.Turn{
		ID:       model.TurnID(c.random.String(GameIDLength, IDAlphabet)),
		GameID:   gameID,
		PlayerID: holder,
	}
	if err := c.storage.SaveTurn(ctx, turn); err != nil {
		return "", err
	}
	return holder, nil
}

// IsFinished reports whether the game has reached its terminal state
func (c *Controller) IsFinished(ctx context.Context, gameID model.GameID) (bool, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	return game.State == model.GameStateFinished, nil
}

// Attack resolves one attack against the opponent's fleet.
//
// The turn-ownership check and every mutation it guards run under the
// game's lock, so concurrent attackers fail fast on ErrNotYourTurn rather
// than interleaving mutations.
func (c *Controller) Attack(ctx context.Context, gameID model.GameID, attackerID model.PlayerID, target model.Position) (*AttackResult, error) {
	if !c.bounds.Contains(target) {
		return nil, model.ErrOutOfBounds
	}

	lock := c.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.State == model.GameStateFinished {
		return nil, model.ErrGameFinished
	}
	if !game.HasPlayer(attackerID) {
		return nil, model.ErrPlayerNotFound
	}

	holder, err := c.currentTurnLocked(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if holder != attackerID {
		return nil, model.ErrNotYourTurn
	}

	opponentID := game.Opponent(attackerID)
	opponentShips, err := c.storage.GetShips(ctx, gameID, opponentID)
	if err != nil {
		return nil, err
	}

	result := c.resolve(target, opponentShips)

	if result.hit != nil {
		if err := c.storage.UpdateShip(ctx, result.hit); err != nil {
			return nil, err
		}
	}

	// Turn holder flips to the opponent only on a miss
	nextPlayer := attackerID
	if result.status == model.AttackStatusMiss {
		nextPlayer = opponentID
		turn, err := c.storage.GetTurnForGame(ctx, gameID)
		if err != nil {
			return nil, err
		}
		turn.PlayerID = nextPlayer
		if err := c.storage.SaveTurn(ctx, turn); err != nil {
			return nil, err
		}
	}

	status := result.status
	game.LastAttack = &status
	game.UpdatedAt = c.clock.Now()

	attack := &AttackResult{
		Status:     result.status,
		Reports:    result.reports,
		NextPlayer: nextPlayer,
	}

	if c.aliveCount(opponentShips) == 0 {
		game.State = model.GameStateFinished
		attack.Finished = true
		attack.Winner = attackerID

		c.logger.Info("game finished",
			slog.String("game_id", string(gameID)),
			slog.String("winner", string(attackerID)),
		)
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	return attack, nil
}

// RandomAttack picks a uniform cell over the full board and resolves it.
// The turn-ownership precondition still applies.
func (c *Controller) RandomAttack(ctx context.Context, gameID model.GameID, attackerID model.PlayerID) (*AttackResult, error) {
	target := model.Position{
		X: c.bounds.XMin + c.random.Intn(c.bounds.Width()),
		Y: c.bounds.YMin + c.random.Intn(c.bounds.Height()),
	}
	return c.Attack(ctx, gameID, attackerID, target)
}

type resolution struct {
	status  model.AttackStatus
	reports []CellReport
	hit     *model.Ship
}

// resolve scans the opponent's ships in stored order and computes the
// outcome and the cell reports to announce.
func (c *Controller) resolve(target model.Position, ships []*model.Ship) resolution {
	for _, ship := range ships {
		if !ship.Covers(target) {
			continue
		}

		if ship.Life > 0 {
			ship.Life--
		}

		if ship.Life > 0 {
			return resolution{
				status:  model.AttackStatusShot,
				reports: []CellReport{{Position: target, Status: model.AttackStatusShot}},
				hit:     ship,
			}
		}

		// Destroyed: announce every footprint cell as killed, then the
		// perimeter buffer as misses. Ships are never adjacent, so the
		// full perimeter of a sunk ship is known empty.
		reports := make([]CellReport, 0, ship.Length*3+2)
		for _, cell := range ship.Cells() {
			reports = append(reports, CellReport{Position: cell, Status: model.AttackStatusKilled})
		}
		for _, cell := range c.killBuffer(ship) {
			reports = append(reports, CellReport{Position: cell, Status: model.AttackStatusMiss})
		}
		return resolution{
			status:  model.AttackStatusKilled,
			reports: reports,
			hit:     ship,
		}
	}

	return resolution{
		status:  model.AttackStatusMiss,
		reports: []CellReport{{Position: target, Status: model.AttackStatusMiss}},
	}
}

// killBuffer computes the on-board perimeter of a destroyed ship: the cell
// before and after the footprint along the ship's axis, plus the two
// perpendicular neighbors of every footprint cell extended one at each end.
func (c *Controller) killBuffer(ship *model.Ship) []model.Position {
	var cells []model.Position

	add := func(p model.Position) {
		if c.bounds.Contains(p) {
			cells = append(cells, p)
		}
	}

	x, y := ship.Position.X, ship.Position.Y
	if ship.Vertical {
		add(model.Position{X: x, Y: y - 1})
		add(model.Position{X: x, Y: y + ship.Length})
		for cy := y - 1; cy <= y+ship.Length; cy++ {
			add(model.Position{X: x - 1, Y: cy})
			add(model.Position{X: x + 1, Y: cy})
		}
	} else {
		add(model.Position{X: x - 1, Y: y})
		add(model.Position{X: x + ship.Length, Y: y})
		for cx := x - 1; cx <= x+ship.Length; cx++ {
			add(model.Position{X: cx, Y: y - 1})
			add(model.Position{X: cx, Y: y + 1})
		}
	}

	return cells
}

func (c *Controller) aliveCount(ships []*model.Ship) int {
	alive := 0
	for _, ship := range ships {
		if ship.IsAlive() {
			alive++
		}
	}
	return alive
}
