package model

// ShipID uniquely identifies a ship
type ShipID string

// ShipType is the client-facing ship class name
type ShipType string

const (
	ShipTypeSmall  ShipType = "small"
	ShipTypeMedium ShipType = "medium"
	ShipTypeLarge  ShipType = "large"
	ShipTypeHuge   ShipType = "huge"
)

// Position is a cell on the play desk
type Position struct {
	X int
	Y int
}

// Ship occupies a contiguous run of Length cells starting at Position,
// extending along y when Vertical, along x otherwise. Life starts at
// Length and is decremented once per confirmed hit; at 0 the ship is
// destroyed and no longer counts as alive.
type Ship struct {
	ID       ShipID
	GameID   GameID
	PlayerID PlayerID
	Type     ShipType
	Position Position
	Vertical bool
	Length   int
	Life     int
}

// Covers reports whether the target cell falls inside both axis ranges
// of the ship's footprint.
func (s *Ship) Covers(p Position) bool {
	xMax, yMax := s.Position.X, s.Position.Y
	if s.Vertical {
		yMax += s.Length - 1
	} else {
		xMax += s.Length - 1
	}
	return p.X >= s.Position.X && p.X <= xMax &&
		p.Y >= s.Position.Y && p.Y <= yMax
}

// Cells returns the ship's footprint in axis order
func (s *Ship) Cells() []Position {
	cells := make([]Position, s.Length)
	for i := 0; i < s.Length; i++ {
		if s.Vertical {
			cells[i] = Position{X: s.Position.X, Y: s.Position.Y + i}
		} else {
			cells[i] = Position{X: s.Position.X + i, Y: s.Position.Y}
		}
	}
	return cells
}

// IsAlive reports whether the ship still has life remaining
func (s *Ship) IsAlive() bool {
	return s.Life > 0
}

// Bounds is the rectangular extent of the attack grid
type Bounds struct {
	XMin int
	XMax int
	YMin int
	YMax int
}

// DefaultBounds returns the standard 10x10 play desk
func DefaultBounds() Bounds {
	return Bounds{XMin: 0, XMax: 9, YMin: 0, YMax: 9}
}

// Contains reports whether the cell lies on the play desk
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Width returns the number of columns
func (b Bounds) Width() int {
	return b.XMax - b.XMin + 1
}

// Height returns the number of rows
func (b Bounds) Height() int {
	return b.YMax - b.YMin + 1
}
