package protocol

import "github.com/bitbybit/go-battleship/internal/model"

// Position is a cell on the wire
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RegRequest is the client login/registration payload
type RegRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegResponse is the reply to a reg request. On failure Error is set,
// ErrorText carries the reason, and Index is empty.
type RegResponse struct {
	Error     bool           `json:"error"`
	ErrorText string         `json:"errorText"`
	Index     model.PlayerID `json:"index"`
	Name      string         `json:"name"`
}

// RoomUser is one occupant in a room listing
type RoomUser struct {
	Name  string         `json:"name"`
	Index model.PlayerID `json:"index"`
}

// RoomUpdateEntry is one room in the update_room broadcast
type RoomUpdateEntry struct {
	RoomID    model.RoomID `json:"roomId"`
	RoomUsers []RoomUser   `json:"roomUsers"`
}

// AddUserToRoomRequest asks to join an existing room
type AddUserToRoomRequest struct {
	IndexRoom model.RoomID `json:"indexRoom"`
}

// CreateGameResponse is sent to each member of a newly full room
type CreateGameResponse struct {
	IDGame   model.GameID   `json:"idGame"`
	IDPlayer model.PlayerID `json:"idPlayer"`
}

// ShipSpec is one ship in a placement submission or start_game reply.
// Direction true means vertical placement.
type ShipSpec struct {
	Position  Position       `json:"position"`
	Direction bool           `json:"direction"`
	Length    int            `json:"length"`
	Type      model.ShipType `json:"type"`
}

// AddShipsRequest submits a player's fleet for a game
type AddShipsRequest struct {
	GameID      model.GameID   `json:"gameId"`
	Ships       []ShipSpec     `json:"ships"`
	IndexPlayer model.PlayerID `json:"indexPlayer"`
}

// StartGameResponse carries the recipient's own ships only, never the
// opponent's, plus the opening turn holder.
type StartGameResponse struct {
	Ships              []ShipSpec     `json:"ships"`
	CurrentPlayerIndex model.PlayerID `json:"currentPlayerIndex"`
}

// AttackRequest is a targeted attack. Coordinates arrive as JSON numbers
// and are validated integral before resolution.
type AttackRequest struct {
	GameID      model.GameID   `json:"gameId"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	IndexPlayer model.PlayerID `json:"indexPlayer"`
}

// RandomAttackRequest asks the server to pick the target cell
type RandomAttackRequest struct {
	GameID      model.GameID   `json:"gameId"`
	IndexPlayer model.PlayerID `json:"indexPlayer"`
}

// AttackResponse reports one cell's resolved status to both players
type AttackResponse struct {
	Position      Position           `json:"position"`
	CurrentPlayer model.PlayerID     `json:"currentPlayer"`
	Status        model.AttackStatus `json:"status"`
}

// TurnResponse announces the current turn holder
type TurnResponse struct {
	CurrentPlayer model.PlayerID `json:"currentPlayer"`
}

// FinishResponse announces the winner
type FinishResponse struct {
	WinPlayer model.PlayerID `json:"winPlayer"`
}

// WinnersEntry is one row of the update_winners broadcast
type WinnersEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}
