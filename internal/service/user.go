package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/repository"
)

type UserService interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	// UpdatePreferences applies update to a copy of the stored preferences and
	// saves it only if the result is valid.
	UpdatePreferences(ctx context.Context, telegramID int64, update func(*domain.Preferences)) (domain.Preferences, error)
}

type userService struct {
	repo    repository.UserRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger, m *metrics.Metrics) UserService {
	return &userService{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	// одна атомарная операция: параллельные апдейты от нового пользователя не конфликтуют
	user, created, err := s.repo.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}

	if created {
		if s.metrics != nil {
			s.metrics.RecordUserRegistered()
		}
		s.logger.Info("new user created",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	}

	return user, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, telegramID int64, update func(*domain.Preferences)) (domain.Preferences, error) {
	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.Preferences{}, err
	}

	prefs := user.Preferences
	update(&prefs)

	if err := prefs.Validate(); err != nil {
		return user.Preferences, err
	}

	if err := s.repo.UpdatePreferences(ctx, telegramID, prefs); err != nil {
		return user.Preferences, err
	}

	s.logger.Debug("preferences updated",
		zap.Int64("telegram_id", telegramID),
		zap.String("country", prefs.Country),
		zap.String("category", string(prefs.Category)),
		zap.String("language", prefs.Language),
		zap.Int("sentences", prefs.SummarySentences),
	)

	return prefs, nil
}
