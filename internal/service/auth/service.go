package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
	"feeltrack/internal/util"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id int) error
}

type Service struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger

	// burnCheck matches the cost of a real password check for unknown usernames
	burnCheck func(password string)
}

func NewService(users UserStore, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		burnCheck: util.BurnPasswordCheck,
	}
}

// Register creates a user with a bcrypt-hashed password. A taken username or email
// yields *apperr.DuplicateError.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, apperr.Invalid("username, email and password are required")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int("user_id", u.ID))
	return u, nil
}

// Authenticate checks the credentials. An unknown user and a wrong password both
// report (nil, false, nil) after the same amount of hashing work.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, bool, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		s.burnCheck(password)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, false, nil
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, false, err
	}
	now := time.Now()
	u.LastLogin = &now

	return u, true, nil
}

func (s *Service) IssueToken(userID int) (string, error) {
	return util.GenerateJWT(userID, s.jwtSecret, s.tokenTTL)
}

// ParseToken returns the user id a token was issued for.
func (s *Service) ParseToken(token string) (int, error) {
	return util.ParseJWT(token, s.jwtSecret)
}
