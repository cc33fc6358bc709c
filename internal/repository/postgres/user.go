package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/newsquery/internal/domain"
)

// users.id is the Telegram user ID.
const userColumns = `id, username, country, category, language, summary_sentences, created_at`

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, bool, error) {
	// xmax = 0 только у только что вставленной строки
	query := `
        INSERT INTO users (id, username)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username
        RETURNING ` + userColumns + `, (xmax = 0) AS inserted`

	var created bool
	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, telegramID, username), &created)
	if err != nil {
		return nil, false, fmt.Errorf("get or create user: %w", err)
	}
	return user, created, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return r.GetByID(ctx, telegramID)
}

func (r *UserRepo) UpdatePreferences(ctx context.Context, telegramID int64, prefs domain.Preferences) error {
	query := `
        UPDATE users
        SET country = $2, category = $3, language = $4, summary_sentences = $5
        WHERE id = $1
    `

	result, err := r.db.Pool.Exec(ctx, query,
		telegramID,
		prefs.Country,
		string(prefs.Category),
		prefs.Language,
		prefs.SummarySentences,
	)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// scanUser reads userColumns followed by any extra columns into extra.
func scanUser(row pgx.Row, extra ...any) (*domain.User, error) {
	var (
		user     domain.User
		username *string
		category string
	)
	dest := []any{
		&user.ID,
		&username,
		&user.Preferences.Country,
		&category,
		&user.Preferences.Language,
		&user.Preferences.SummarySentences,
		&user.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, err
	}

	if username != nil {
		user.Username = *username
	}
	user.Preferences.Category = domain.Category(category)
	user.TelegramID = user.ID
	return &user, nil
}
