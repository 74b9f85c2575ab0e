package preferences

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// Get returns the caller's preferences, falling back to defaults when none were saved.
func (uc *UseCase) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := user.EffectivePreferences()
	return &prefs, nil
}

// Update merges the provided fields into the stored bundle in a single write.
func (uc *UseCase) Update(ctx context.Context, userID string, patch domain.PreferencesPatch) (*domain.Preferences, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	prefs, err := uc.users.MergePreferences(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("preferences updated", zap.String("user_id", userID))
	return prefs, nil
}

func (uc *UseCase) Reset(ctx context.Context, userID string) (*domain.Preferences, error) {
	defaults := domain.DefaultPreferences()
	if err := uc.users.SetPreferences(ctx, userID, defaults); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("preferences reset", zap.String("user_id", userID))
	return &defaults, nil
}
