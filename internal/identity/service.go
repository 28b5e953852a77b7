package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"recircle/internal/audit"
	"recircle/internal/profile"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/middleware/auth"
	"recircle/pkg/platform/sentinel"
	"recircle/pkg/platform/tx"
)

const minPasswordLength = 8

// Service registers accounts and issues bearer tokens.
type Service struct {
	runner     tx.Runner
	users      Store
	profiles   profile.Store
	audit      audit.Publisher
	signingKey []byte
	tokenTTL   time.Duration
	logger     *slog.Logger
}

func NewService(runner tx.Runner, users Store, profiles profile.Store, publisher audit.Publisher, signingKey []byte, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		runner:     runner,
		users:      users,
		profiles:   profiles,
		audit:      publisher,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// Register creates the account and its zero-balance points profile in one
// unit of work. A taken username surfaces as a conflict.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) (User, error) {
	if username == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	if len(password) < minPasswordLength {
		return User{}, dErrors.Newf(dErrors.CodeBadRequest, "password must be at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return User{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user := User{
		ID:           domain.NewUserID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	err = s.runner.Run(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "username already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "create user")
		}
		if err := s.profiles.Create(ctx, profile.Profile{UserID: user.ID, Role: role}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "create profile")
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}

	s.audit.Emit(ctx, audit.Event{
		Kind:     audit.KindUserRegistered,
		UserID:   user.ID.String(),
		Entity:   "user",
		EntityID: user.ID.String(),
		Detail:   string(role),
	})
	s.logger.Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token carrying
// the user's role. Bad username and bad password are indistinguishable to
// the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	prof, err := s.profiles.FindByUser(ctx, user.ID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "find profile")
	}

	now := time.Now().UTC()
	claims := auth.Claims{
		Role: string(prof.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return token, nil
}
