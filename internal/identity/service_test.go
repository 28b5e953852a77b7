package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"recircle/internal/audit"
	"recircle/internal/profile"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/middleware/auth"
	"recircle/pkg/platform/tx"
)

const testSigningKey = "unit-test-signing-key"

type IdentityServiceSuite struct {
	suite.Suite
	users    *MemoryStore
	profiles *profile.MemoryStore
	service  *Service
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.users = NewMemoryStore()
	s.profiles = profile.NewMemoryStore()
	s.service = NewService(tx.NewMemoryRunner(), s.users, s.profiles, audit.NopPublisher{},
		[]byte(testSigningKey), time.Hour, slog.New(slog.DiscardHandler))
}

func (s *IdentityServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("creates the user and a zero-balance profile", func() {
		user, err := s.service.Register(ctx, "ana", "correct-horse", domain.RoleCitizen)
		s.Require().NoError(err)
		s.False(user.ID.IsZero())
		s.NotEqual("correct-horse", user.PasswordHash)

		p, err := s.profiles.FindByUser(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(domain.RoleCitizen, p.Role)
		s.Equal(0, p.Points)
	})

	s.Run("duplicate username is a conflict", func() {
		_, err := s.service.Register(ctx, "ana", "another-pass", domain.RoleCollector)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict), "got %v", err)
	})

	s.Run("validation", func() {
		_, err := s.service.Register(ctx, "", "correct-horse", domain.RoleCitizen)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = s.service.Register(ctx, "bo", "short", domain.RoleCitizen)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = s.service.Register(ctx, "bo", "correct-horse", domain.Role("janitor"))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *IdentityServiceSuite) TestLogin() {
	ctx := context.Background()
	user, err := s.service.Register(ctx, "leo", "correct-horse", domain.RoleRecycler)
	s.Require().NoError(err)

	s.Run("valid credentials yield a token carrying id and role", func() {
		token, err := s.service.Login(ctx, "leo", "correct-horse")
		s.Require().NoError(err)

		claims := &auth.Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return []byte(testSigningKey), nil
		})
		s.Require().NoError(err)
		s.True(parsed.Valid)
		s.Equal(user.ID.String(), claims.Subject)
		s.Equal(string(domain.RoleRecycler), claims.Role)
		s.WithinDuration(time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	s.Run("wrong password is unauthorized", func() {
		_, err := s.service.Login(ctx, "leo", "wrong-horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown user is indistinguishable from a wrong password", func() {
		_, err := s.service.Login(ctx, "nobody", "correct-horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("invalid credentials", dErrors.MessageOf(err))
	})
}
