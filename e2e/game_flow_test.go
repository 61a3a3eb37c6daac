package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbybit/go-battleship/internal/factory"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/protocol"
	"github.com/bitbybit/go-battleship/internal/web"
)

// testServer manages a real websocket server for e2e tests
type testServer struct {
	app      *factory.App
	url      string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	server := httptest.NewServer(web.NewGameRouter(app.Supervisor))

	return &testServer{
		app: app,
		url: "ws" + strings.TrimPrefix(server.URL, "http"),
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = app.Supervisor.Shutdown(ctx)
			server.Close()
		},
	}
}

// wsClient is one connected game client
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialClient(t *testing.T, url string) *wsClient {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType string, payload any) {
	c.t.Helper()

	raw, err := protocol.Encode(msgType, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, raw))
}

func (c *wsClient) sendRaw(raw string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// expect reads frames until one of the wanted type arrives, skipping
// interleaved broadcasts, and returns its payload document
func (c *wsClient) expect(msgType string) string {
	return c.expectWhere(msgType, func(string) bool { return true })
}

// expectWhere additionally skips frames of the wanted type whose payload
// does not satisfy the predicate. Broadcast types repeat on every lobby
// change, so a test has to wait for the revision it caused.
func (c *wsClient) expectWhere(msgType string, ok func(data string) bool) string {
	c.t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, raw, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %q", msgType)

		env, err := protocol.Decode(raw)
		require.NoError(c.t, err)
		if env.Type == msgType && ok(env.Data) {
			return env.Data
		}
	}

	c.t.Fatalf("no %q frame arrived in time", msgType)
	return ""
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(data), v))
}

// register logs a client in and returns its player id
func register(t *testing.T, c *wsClient, name string) model.PlayerID {
	t.Helper()

	c.send(protocol.TypeReg, protocol.RegRequest{Name: name, Password: "secret"})

	var reply protocol.RegResponse
	decodeJSON(t, c.expect(protocol.TypeReg), &reply)
	require.False(t, reply.Error, "registration refused: %s", reply.ErrorText)
	require.NotEmpty(t, reply.Index)

	return reply.Index
}

func oneShipFleet(x, y int) []protocol.ShipSpec {
	return []protocol.ShipSpec{{
		Position: protocol.Position{X: x, Y: y},
		Length:   1,
		Type:     model.ShipTypeSmall,
	}}
}

func TestFullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := dialClient(t, ts.url)
	bob := dialClient(t, ts.url)

	aliceID := register(t, alice, "Alice")
	bobID := register(t, bob, "Bob")
	require.NotEqual(t, aliceID, bobID)

	// Alice opens a room; the listing broadcast names it
	alice.sendRaw(`{"type":"create_room","data":"","id":0}`)

	var rooms []protocol.RoomUpdateEntry
	listing := alice.expectWhere(protocol.TypeUpdateRoom, func(data string) bool {
		var entries []protocol.RoomUpdateEntry
		return json.Unmarshal([]byte(data), &entries) == nil && len(entries) == 1
	})
	decodeJSON(t, listing, &rooms)
	require.Len(t, rooms, 1)
	require.Len(t, rooms[0].RoomUsers, 1)
	assert.Equal(t, "Alice", rooms[0].RoomUsers[0].Name)
	roomID := rooms[0].RoomID

	// Bob joins; the full room spawns a game for both players
	bob.send(protocol.TypeAddUserToRoom, protocol.AddUserToRoomRequest{IndexRoom: roomID})

	var aliceGame, bobGame protocol.CreateGameResponse
	decodeJSON(t, alice.expect(protocol.TypeCreateGame), &aliceGame)
	decodeJSON(t, bob.expect(protocol.TypeCreateGame), &bobGame)
	require.Equal(t, aliceGame.IDGame, bobGame.IDGame)
	assert.Equal(t, aliceID, aliceGame.IDPlayer)
	assert.Equal(t, bobID, bobGame.IDPlayer)
	gameID := aliceGame.IDGame

	// Single-cell fleets keep the endgame short
	alice.send(protocol.TypeAddShips, protocol.AddShipsRequest{
		GameID:      gameID,
		Ships:       oneShipFleet(2, 2),
		IndexPlayer: aliceID,
	})
	bob.send(protocol.TypeAddShips, protocol.AddShipsRequest{
		GameID:      gameID,
		Ships:       oneShipFleet(7, 7),
		IndexPlayer: bobID,
	})

	var aliceStart, bobStart protocol.StartGameResponse
	decodeJSON(t, alice.expect(protocol.TypeStartGame), &aliceStart)
	decodeJSON(t, bob.expect(protocol.TypeStartGame), &bobStart)

	// Each side sees its own layout only
	require.Len(t, aliceStart.Ships, 1)
	assert.Equal(t, protocol.Position{X: 2, Y: 2}, aliceStart.Ships[0].Position)
	require.Len(t, bobStart.Ships, 1)
	assert.Equal(t, protocol.Position{X: 7, Y: 7}, bobStart.Ships[0].Position)
	require.Equal(t, aliceStart.CurrentPlayerIndex, bobStart.CurrentPlayerIndex)

	var turn protocol.TurnResponse
	decodeJSON(t, alice.expect(protocol.TypeTurn), &turn)
	holder := turn.CurrentPlayer
	require.Contains(t, []model.PlayerID{aliceID, bobID}, holder)

	// The opening coin flip decides who shoots; the attacker sinks the
	// opponent's only ship in one shot
	attacker, attackerID := alice, aliceID
	target := protocol.Position{X: 7, Y: 7}
	if holder == bobID {
		attacker, attackerID = bob, bobID
		target = protocol.Position{X: 2, Y: 2}
	}

	attacker.send(protocol.TypeAttack, protocol.AttackRequest{
		GameID:      gameID,
		X:           float64(target.X),
		Y:           float64(target.Y),
		IndexPlayer: attackerID,
	})

	var report protocol.AttackResponse
	decodeJSON(t, attacker.expect(protocol.TypeAttack), &report)
	assert.Equal(t, model.AttackStatusKilled, report.Status)
	assert.Equal(t, target, report.Position)
	assert.Equal(t, attackerID, report.CurrentPlayer)

	var finish protocol.FinishResponse
	decodeJSON(t, alice.expect(protocol.TypeFinish), &finish)
	assert.Equal(t, attackerID, finish.WinPlayer)
	decodeJSON(t, bob.expect(protocol.TypeFinish), &finish)
	assert.Equal(t, attackerID, finish.WinPlayer)

	// The winners broadcast carries the fresh win
	var table []protocol.WinnersEntry
	winners := alice.expectWhere(protocol.TypeUpdateWinners, func(data string) bool {
		var entries []protocol.WinnersEntry
		return json.Unmarshal([]byte(data), &entries) == nil && len(entries) == 1
	})
	decodeJSON(t, winners, &table)
	require.Len(t, table, 1)
	assert.Equal(t, 1, table[0].Wins)
}

func TestMalformedFramesDoNotCloseConnection(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	client := dialClient(t, ts.url)

	// Neither garbage nor a bad id may terminate the session
	client.sendRaw(`this is not json`)
	client.sendRaw(`{"type":"reg","data":"{}","id":1}`)
	client.sendRaw(`{"type":"no_such_command","data":"","id":0}`)

	playerID := register(t, client, "Carol")
	assert.NotEmpty(t, playerID)
}

func TestRegRejectsWrongPassword(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	first := dialClient(t, ts.url)
	register(t, first, "Dave")

	second := dialClient(t, ts.url)
	second.send(protocol.TypeReg, protocol.RegRequest{Name: "Dave", Password: "different"})

	var reply protocol.RegResponse
	decodeJSON(t, second.expect(protocol.TypeReg), &reply)
	assert.True(t, reply.Error)
	assert.NotEmpty(t, reply.ErrorText)
	assert.Empty(t, reply.Index)
}
