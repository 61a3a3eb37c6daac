package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShipCoversHorizontal(t *testing.T) {
	ship := &Ship{Position: Position{X: 2, Y: 5}, Length: 3}

	assert.True(t, ship.Covers(Position{X: 2, Y: 5}))
	assert.True(t, ship.Covers(Position{X: 4, Y: 5}))
	assert.False(t, ship.Covers(Position{X: 5, Y: 5}))
	assert.False(t, ship.Covers(Position{X: 2, Y: 4}))
	assert.False(t, ship.Covers(Position{X: 1, Y: 5}))
}

func TestShipCoversVertical(t *testing.T) {
	ship := &Ship{Position: Position{X: 2, Y: 5}, Length: 3, Vertical: true}

	assert.True(t, ship.Covers(Position{X: 2, Y: 5}))
	assert.True(t, ship.Covers(Position{X: 2, Y: 7}))
	assert.False(t, ship.Covers(Position{X: 2, Y: 8}))
	assert.False(t, ship.Covers(Position{X: 3, Y: 5}))
}

func TestZeroLengthShipCoversNothing(t *testing.T) {
	ship := &Ship{Position: Position{X: 2, Y: 5}, Length: 0}

	assert.False(t, ship.Covers(Position{X: 2, Y: 5}))
}

func TestShipCells(t *testing.T) {
	horizontal := &Ship{Position: Position{X: 2, Y: 5}, Length: 3}
	assert.Equal(t, []Position{{X: 2, Y: 5}, {X: 3, Y: 5}, {X: 4, Y: 5}}, horizontal.Cells())

	vertical := &Ship{Position: Position{X: 0, Y: 0}, Length: 2, Vertical: true}
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 0, Y: 1}}, vertical.Cells())
}

func TestBoundsContains(t *testing.T) {
	bounds := DefaultBounds()

	assert.True(t, bounds.Contains(Position{X: 0, Y: 0}))
	assert.True(t, bounds.Contains(Position{X: 9, Y: 9}))
	assert.False(t, bounds.Contains(Position{X: -1, Y: 0}))
	assert.False(t, bounds.Contains(Position{X: 0, Y: 10}))

	assert.Equal(t, 10, bounds.Width())
	assert.Equal(t, 10, bounds.Height())
}

func TestGameOpponent(t *testing.T) {
	game := &Game{Player1ID: "P1", Player2ID: "P2"}

	assert.Equal(t, PlayerID("P2"), game.Opponent("P1"))
	assert.Equal(t, PlayerID("P1"), game.Opponent("P2"))
	assert.True(t, game.HasPlayer("P1"))
	assert.False(t, game.HasPlayer("P3"))
}

func TestRoomIsFull(t *testing.T) {
	room := &Room{Player1ID: "P1"}
	assert.False(t, room.IsFull())
	assert.True(t, room.HasPlayer("P1"))

	p2 := PlayerID("P2")
	room.Player2ID = &p2
	assert.True(t, room.IsFull())
	assert.True(t, room.HasPlayer("P2"))
}
