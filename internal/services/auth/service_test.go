package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bitbybit/go-battleship/internal/dependencies/mocks"
	"github.com/bitbybit/go-battleship/internal/model"
	"github.com/bitbybit/go-battleship/internal/storage/memory"
	"github.com/bitbybit/go-battleship/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite

	store   *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.store, s.clock, s.random, testutil.NopLogger())
}

func (s *ServiceSuite) TestRegisterCreatesPlayer() {
	s.random.QueueString("PLAYER1")

	player, err := s.service.Register(context.Background(), "alice", "secret")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("PLAYER1"), player.ID)
	s.Equal("alice", player.Name)
	s.NotEqual("secret", player.PasswordHash)
	s.Equal(s.clock.CurrentTime, player.CreatedAt)
}

func (s *ServiceSuite) TestRegisterSameCredentialsResolvesSamePlayer() {
	ctx := context.Background()
	s.random.QueueString("PLAYER1")

	first, err := s.service.Register(ctx, "alice", "secret")
	s.Require().NoError(err)

	second, err := s.service.Register(ctx, "alice", "secret")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(0, first.Wins)
}

func (s *ServiceSuite) TestRegisterWrongPassword() {
	ctx := context.Background()
	s.random.QueueString("PLAYER1")

	_, err := s.service.Register(ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Register(ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestRegisterBlankName() {
	_, err := s.service.Register(context.Background(), "   ", "secret")
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *ServiceSuite) TestRegisterBlankPassword() {
	_, err := s.service.Register(context.Background(), "alice", "")
	s.ErrorIs(err, model.ErrInvalidName)
}

func (s *ServiceSuite) TestAttachAndResolve() {
	s.service.Attach("conn-1", "PLAYER1")

	playerID, err := s.service.PlayerIDForConn("conn-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("PLAYER1"), playerID)

	s.ElementsMatch([]string{"conn-1"}, s.service.ConnIDsForPlayer("PLAYER1"))
}

func (s *ServiceSuite) TestAttachMultipleConnsForOnePlayer() {
	s.service.Attach("conn-1", "PLAYER1")
	s.service.Attach("conn-2", "PLAYER1")

	s.ElementsMatch([]string{"conn-1", "conn-2"}, s.service.ConnIDsForPlayer("PLAYER1"))
}

func (s *ServiceSuite) TestAttachRebindDropsOldPlayer() {
	s.service.Attach("conn-1", "PLAYER1")
	s.service.Attach("conn-1", "PLAYER2")

	playerID, err := s.service.PlayerIDForConn("conn-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("PLAYER2"), playerID)
	s.Empty(s.service.ConnIDsForPlayer("PLAYER1"))
}

func (s *ServiceSuite) TestDetach() {
	s.service.Attach("conn-1", "PLAYER1")
	s.service.Detach("conn-1")

	_, err := s.service.PlayerIDForConn("conn-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.Empty(s.service.ConnIDsForPlayer("PLAYER1"))
}

func (s *ServiceSuite) TestDetachUnknownConnIsNoop() {
	s.service.Detach("never-seen")

	_, err := s.service.PlayerIDForConn("never-seen")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
