package protocol

import (
	"encoding/json"

	"github.com/bitbybit/go-battleship/internal/model"
)

// Command type strings, both directions
const (
	TypeReg           = "reg"
	TypeUpdateWinners = "update_winners"
	TypeCreateRoom    = "create_room"
	TypeAddUserToRoom = "add_user_to_room"
	TypeCreateGame    = "create_game"
	TypeUpdateRoom    = "update_room"
	TypeAddShips      = "add_ships"
	TypeStartGame     = "start_game"
	TypeRandomAttack  = "randomAttack"
	TypeAttack        = "attack"
	TypeTurn          = "turn"
	TypeFinish        = "finish"
)

// Envelope is the outer wire wrapper after validation. Data holds the
// nested payload document still in its encoded string form; commands
// without a payload carry an empty string.
type Envelope struct {
	Type string
	Data string
}

// DecodePayload unmarshals the nested payload into v
func (e *Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal([]byte(e.Data), v); err != nil {
		return model.ErrMalformedEnvelope
	}
	return nil
}

// wireEnvelope mirrors the exact wire shape. The data field is itself a
// JSON-encoded string (double encoding), and id is a fixed reserved
// marker, not a correlation id.
type wireEnvelope struct {
	Type *string `json:"type"`
	Data *string `json:"data"`
	ID   *int    `json:"id"`
}

// Decode parses and validates one inbound envelope. An envelope is valid
// iff id is literally 0, data is present, and type is a string; anything
// else is ErrMalformedEnvelope.
func Decode(raw []byte) (*Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, model.ErrMalformedEnvelope
	}
	if wire.ID == nil || *wire.ID != 0 {
		return nil, model.ErrMalformedEnvelope
	}
	if wire.Data == nil || wire.Type == nil {
		return nil, model.ErrMalformedEnvelope
	}

	return &Envelope{
		Type: *wire.Type,
		Data: *wire.Data,
	}, nil
}

// Encode builds one outbound envelope, nest-encoding the payload into the
// data field to keep the wire contract bit-exact.
func Encode(msgType string, payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	data := string(inner)
	id := 0
	return json.Marshal(wireEnvelope{
		Type: &msgType,
		Data: &data,
		ID:   &id,
	})
}
