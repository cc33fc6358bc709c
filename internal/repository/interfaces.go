package repository

import (
	"context"

	"github.com/kitbuilder587/newsquery/internal/domain"
)

// UserRepository stores bot users keyed by Telegram ID together with their
// news preferences.
type UserRepository interface {
	// GetOrCreate registers the user atomically and refreshes the username of
	// an existing one. created is true only for a fresh row.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (user *domain.User, created bool, err error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdatePreferences(ctx context.Context, telegramID int64, prefs domain.Preferences) error
}
