package user

import (
	"context"

	"go.uber.org/zap"

	"feeltrack/internal/apperr"
	"feeltrack/internal/model"
)

type UserStore interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
	Delete(ctx context.Context, id int) error
}

type PreferencesStore interface {
	Get(ctx context.Context, userID int) (*model.Preferences, error)
	Update(ctx context.Context, userID int, patch model.PreferencesPatch) (*model.Preferences, error)
}

type Service struct {
	users  UserStore
	prefs  PreferencesStore
	logger *zap.Logger
}

func NewService(users UserStore, prefs PreferencesStore, logger *zap.Logger) *Service {
	return &Service{users: users, prefs: prefs, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// Delete removes the user and everything they own.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.Int("user_id", id))
	return nil
}

// Preferences returns the stored preferences, creating defaults for users that lack a row.
func (s *Service) Preferences(ctx context.Context, id int) (*model.Preferences, error) {
	return s.prefs.Get(ctx, id)
}

func (s *Service) UpdatePreferences(ctx context.Context, id int, patch model.PreferencesPatch) (*model.Preferences, error) {
	if patch.NotificationFrequency != nil && *patch.NotificationFrequency < 0 {
		return nil, apperr.Invalid("notification_frequency must not be negative")
	}
	if patch.Theme != nil && (len(*patch.Theme) == 0 || len(*patch.Theme) > 20) {
		return nil, apperr.Invalid("theme must be 1 to 20 characters")
	}
	return s.prefs.Update(ctx, id, patch)
}
