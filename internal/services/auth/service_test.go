package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stationscore/internal/dependencies/mocks"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/session"
	"github.com/mcoot/stationscore/internal/storage/memory"
	"github.com/mcoot/stationscore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	sessions *session.MemoryStore
	clock    *mocks.MockClock
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sessions = session.NewMemoryStore(s.clock)
	s.service = New(s.storage, s.sessions, s.clock, mocks.NewMockIDs("tok"), testutil.NopLogger(),
		Config{SessionDuration: time.Hour})
	s.ctx = context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: string(hash),
		Rank:         1,
		Code:         "ABC234",
	}))
}

func (s *ServiceSuite) loginLogs() []*model.LoginLogEntry {
	logs, err := s.storage.ListLoginLogs(s.ctx, 0)
	s.Require().NoError(err)
	return logs
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "10.0.0.1")
	s.Require().NoError(err)

	s.NotEmpty(sess.Token)
	s.Equal(model.UserID("u1"), sess.User.ID)
	s.Equal(s.clock.Now().Add(time.Hour), sess.ExpiresAt)
}

func (s *ServiceSuite) TestLoginRecordsSuccess() {
	_, err := s.service.Login(s.ctx, "alice", "password123", "10.0.0.1")
	s.Require().NoError(err)

	logs := s.loginLogs()
	s.Require().Len(logs, 1)
	s.True(logs[0].Success)
	s.Equal(model.UserID("u1"), logs[0].UserID)
	s.Equal("10.0.0.1", logs[0].IP)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(user.LastLogin)
	s.True(user.LastLogin.Equal(s.clock.Now()))
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Login(s.ctx, "alice", "wrong", "10.0.0.1")
	s.ErrorIs(err, ErrInvalidCredentials)

	logs := s.loginLogs()
	s.Require().Len(logs, 1)
	s.False(logs[0].Success)
	s.Equal(model.UserID("u1"), logs[0].UserID)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Nil(user.LastLogin)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "bob", "password123", "10.0.0.2")
	s.ErrorIs(err, ErrInvalidCredentials)

	logs := s.loginLogs()
	s.Require().Len(logs, 1)
	s.False(logs[0].Success)
	s.Empty(logs[0].UserID)
}

// LoginWithCode tests

func (s *ServiceSuite) TestLoginWithCode() {
	sess, err := s.service.LoginWithCode(s.ctx, " abc234 ", "10.0.0.1")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), sess.User.ID)
}

func (s *ServiceSuite) TestLoginWithBadCode() {
	for _, code := range []string{"", "ZZZZZZ"} {
		_, err := s.service.LoginWithCode(s.ctx, code, "10.0.0.1")
		s.ErrorIs(err, ErrInvalidCredentials)
	}
	s.Len(s.loginLogs(), 2)
}

// Session tests

func (s *ServiceSuite) TestAuthenticate() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	user, err := s.service.Authenticate(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *ServiceSuite) TestAuthenticateSeesCurrentUser() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	user.Rank = model.RankAdmin
	s.Require().NoError(s.storage.UpdateUser(s.ctx, user))

	current, err := s.service.Authenticate(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.True(current.IsAdmin())
}

func (s *ServiceSuite) TestSessionExpires() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Minute)

	_, err = s.service.Authenticate(s.ctx, sess.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestUnknownToken() {
	_, err := s.service.Authenticate(s.ctx, "nope")
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.Authenticate(s.ctx, "")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestLogout() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx, sess.Token))

	_, err = s.service.Authenticate(s.ctx, sess.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestDeletedUserSessionInvalid() {
	sess, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)
	s.Require().NoError(s.storage.DeleteUser(s.ctx, "u1"))

	_, err = s.service.Authenticate(s.ctx, sess.Token)
	s.ErrorIs(err, ErrInvalidSession)
	s.Equal(0, s.sessions.Len())
}

func (s *ServiceSuite) TestSessionsAreDistinct() {
	first, err := s.service.Login(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)
	second, err := s.service.LoginWithCode(s.ctx, "ABC234", "")
	s.Require().NoError(err)

	s.NotEqual(first.Token, second.Token)
	s.Require().NoError(s.service.Logout(s.ctx, first.Token))
	_, err = s.service.Authenticate(s.ctx, second.Token)
	s.NoError(err)
}
