package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/bitbybit/go-battleship/internal/dependencies/random"
	"github.com/bitbybit/go-battleship/internal/testutil"
)

// recordingDispatcher captures inbound frames by connection
type recordingDispatcher struct {
	mu     sync.Mutex
	frames []dispatchedFrame
}

type dispatchedFrame struct {
	ConnID string
	Raw    string
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, raw []byte, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, dispatchedFrame{ConnID: connID, Raw: string(raw)})
}

func (d *recordingDispatcher) all() []dispatchedFrame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchedFrame(nil), d.frames...)
}

type recordingDetacher struct {
	mu       sync.Mutex
	detached []string
}

func (d *recordingDetacher) Detach(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detached = append(d.detached, connID)
}

func (d *recordingDetacher) all() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.detached...)
}

type SupervisorSuite struct {
	suite.Suite

	dispatcher *recordingDispatcher
	detacher   *recordingDetacher
	supervisor *Supervisor
	server     *httptest.Server
}

func TestSupervisorSuite(t *testing.T) {
	suite.Run(t, new(SupervisorSuite))
}

func (s *SupervisorSuite) SetupTest() {
	s.dispatcher = &recordingDispatcher{}
	s.detacher = &recordingDetacher{}
	s.supervisor = New(s.dispatcher, s.detacher, random.New(), Config{
		PingInterval:  50 * time.Millisecond,
		ShutdownGrace: 50 * time.Millisecond,
	}, testutil.NopLogger())
	s.server = httptest.NewServer(s.supervisor)
}

func (s *SupervisorSuite) TearDownTest() {
	_ = s.supervisor.Shutdown(context.Background())
	s.server.Close()
}

func (s *SupervisorSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return client
}

// waitFor polls until the condition holds or the deadline passes
func (s *SupervisorSuite) waitFor(cond func() bool, msg string) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Require().True(cond(), msg)
}

func (s *SupervisorSuite) TestInboundFramesReachDispatcher() {
	client := s.dial()
	defer client.Close()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")
	connID := s.supervisor.ConnIDs()[0]

	err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"reg","data":"{}","id":0}`))
	s.Require().NoError(err)

	s.waitFor(func() bool { return len(s.dispatcher.all()) == 1 }, "frame not dispatched")
	frame := s.dispatcher.all()[0]
	s.Equal(connID, frame.ConnID)
	s.Equal(`{"type":"reg","data":"{}","id":0}`, frame.Raw)
}

func (s *SupervisorSuite) TestSendReachesClient() {
	client := s.dial()
	defer client.Close()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")
	connID := s.supervisor.ConnIDs()[0]

	s.Require().NoError(s.supervisor.Send(connID, []byte("hello")))

	_, raw, err := client.ReadMessage()
	s.Require().NoError(err)
	s.Equal("hello", string(raw))
}

func (s *SupervisorSuite) TestSendDuringDisconnectDoesNotPanic() {
	client := s.dial()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")
	connID := s.supervisor.ConnIDs()[0]

	// Hammer the outbound path while the connection is torn down; the
	// teardown must never turn a queued send into a panic
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = s.supervisor.Send(connID, []byte("spam"))
			s.supervisor.Broadcast([]byte("spam"))
		}
	}()

	time.Sleep(10 * time.Millisecond)
	s.Require().NoError(client.Close())

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 0 }, "connection not dropped")

	close(stop)
	wg.Wait()
}

func (s *SupervisorSuite) TestSendToUnknownConnIsNoop() {
	s.NoError(s.supervisor.Send("never-seen", []byte("hello")))
}

func (s *SupervisorSuite) TestBroadcastReachesAllClients() {
	first := s.dial()
	defer first.Close()
	second := s.dial()
	defer second.Close()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 2 }, "connections not registered")

	s.supervisor.Broadcast([]byte("to-everyone"))

	for _, client := range []*websocket.Conn{first, second} {
		_, raw, err := client.ReadMessage()
		s.Require().NoError(err)
		s.Equal("to-everyone", string(raw))
	}
}

func (s *SupervisorSuite) TestClientCloseDetachesSession() {
	client := s.dial()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")
	connID := s.supervisor.ConnIDs()[0]

	s.Require().NoError(client.Close())

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 0 }, "connection not dropped")
	s.waitFor(func() bool { return len(s.detacher.all()) == 1 }, "session not detached")
	s.Equal(connID, s.detacher.all()[0])
}

func (s *SupervisorSuite) TestHeartbeatKeepsRespondingClientAlive() {
	client := s.dial()
	defer client.Close()

	// The default client ping handler answers with a pong, but only while
	// a read is in flight
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")

	// Survive several sweep periods
	time.Sleep(4 * 50 * time.Millisecond)
	s.Len(s.supervisor.ConnIDs(), 1)

	client.Close()
	<-done
}

func (s *SupervisorSuite) TestHeartbeatTerminatesSilentClient() {
	client := s.dial()
	defer client.Close()

	// Swallow pings instead of answering them
	client.SetPingHandler(func(string) error { return nil })
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 0 }, "silent connection not terminated")
}

func (s *SupervisorSuite) TestShutdownRefusesNewConnections() {
	client := s.dial()
	defer client.Close()

	s.waitFor(func() bool { return len(s.supervisor.ConnIDs()) == 1 }, "connection not registered")

	s.Require().NoError(s.supervisor.Shutdown(context.Background()))

	s.Empty(s.supervisor.ConnIDs())

	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Error(err)
	s.Require().NotNil(resp)
	s.Equal(503, resp.StatusCode)
}
