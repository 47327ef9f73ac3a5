package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campuspass/internal/identity/models"
	"campuspass/internal/identity/store"
	jwttoken "campuspass/internal/jwt_token"
	dErrors "campuspass/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = New(store.NewInMemory(), jwttoken.NewJWTService("test-key", "campuspass-test"), time.Hour)
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) signup(email string, role models.Role) *models.User {
	user, err := s.svc.Signup(s.ctx, models.SignupRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse",
		Role:     role,
	})
	s.Require().NoError(err)
	return user
}

func (s *IdentityServiceSuite) TestSignup() {
	s.Run("defaults role to participant", func() {
		user := s.signup("participant@campus.edu", "")
		s.Equal(models.RoleParticipant, user.Role)
		s.NotEmpty(user.ID)
	})

	s.Run("normalizes email casing", func() {
		user := s.signup("MixedCase@Campus.EDU", models.RoleOrganizer)
		s.Equal("mixedcase@campus.edu", user.Email)
	})

	s.Run("rejects duplicate email with conflict", func() {
		s.signup("dup@campus.edu", "")
		_, err := s.svc.Signup(s.ctx, models.SignupRequest{
			Name:     "Other",
			Email:    "dup@campus.edu",
			Password: "another-pass",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("never stores the raw password", func() {
		user := s.signup("hashed@campus.edu", "")
		s.NotContains(user.PasswordHash, "correct-horse")
	})
}

func (s *IdentityServiceSuite) TestLogin() {
	s.signup("login@campus.edu", models.RoleVolunteer)

	s.Run("issues a token for valid credentials", func() {
		resp, err := s.svc.Login(s.ctx, models.LoginRequest{
			Email:    "login@campus.edu",
			Password: "correct-horse",
		})
		s.Require().NoError(err)
		s.NotEmpty(resp.Token)
		s.Equal(models.RoleVolunteer, resp.User.Role)
	})

	s.Run("rejects a wrong password", func() {
		_, err := s.svc.Login(s.ctx, models.LoginRequest{
			Email:    "login@campus.edu",
			Password: "wrong",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("does not reveal unknown emails", func() {
		_, err := s.svc.Login(s.ctx, models.LoginRequest{
			Email:    "ghost@campus.edu",
			Password: "correct-horse",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
