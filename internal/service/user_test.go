package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/repository"
)

func TestUserService_GetOrCreate(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		telegramID int64
		username   string
		setup      func(*repository.MockUserRepository)
		wantNew    bool
	}{
		{
			name:       "new user created",
			telegramID: 123,
			username:   "testuser",
			setup:      func(m *repository.MockUserRepository) {},
			wantNew:    true,
		},
		{
			name:       "existing user returned",
			telegramID: 123,
			username:   "testuser",
			setup: func(m *repository.MockUserRepository) {
				m.GetOrCreate(context.Background(), 123, "testuser")
			},
		},
		{
			name:       "username updated",
			telegramID: 123,
			username:   "newname",
			setup: func(m *repository.MockUserRepository) {
				m.GetOrCreate(context.Background(), 123, "oldname")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMockUserRepository()
			tt.setup(repo)
			m := metrics.NewWithRegistry(prometheus.NewRegistry())

			svc := NewUserService(repo, logger, m)
			user, err := svc.GetOrCreate(context.Background(), tt.telegramID, tt.username)
			if err != nil {
				t.Fatalf("GetOrCreate() error = %v", err)
			}

			if user.TelegramID != tt.telegramID {
				t.Errorf("user.TelegramID = %v, want %v", user.TelegramID, tt.telegramID)
			}
			if user.Username != tt.username {
				t.Errorf("user.Username = %v, want %v", user.Username, tt.username)
			}

			stored, _ := repo.GetByTelegramID(context.Background(), tt.telegramID)
			if stored.Username != tt.username {
				t.Errorf("stored username = %v, want %v", stored.Username, tt.username)
			}

			registered := testutil.ToFloat64(m.UsersRegisteredTotal)
			if tt.wantNew && registered != 1 {
				t.Errorf("UsersRegisteredTotal = %v, want 1", registered)
			}
			if !tt.wantNew && registered != 0 {
				t.Errorf("UsersRegisteredTotal = %v, want 0", registered)
			}
		})
	}
}

func TestUserService_GetOrCreate_RepoError(t *testing.T) {
	repo := repository.NewMockUserRepository().WithError(errors.New("database error"))

	svc := NewUserService(repo, zap.NewNop(), nil)
	_, err := svc.GetOrCreate(context.Background(), 123, "test")

	if err == nil {
		t.Error("GetOrCreate() expected error, got nil")
	}
}

// staleReadRepo never sees a user on lookup, like a read that raced with
// another writer. Registration must not depend on it.
type staleReadRepo struct {
	*repository.MockUserRepository
}

func (r staleReadRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestUserService_GetOrCreate_ConcurrentFirstContact(t *testing.T) {
	repo := staleReadRepo{repository.NewMockUserRepository()}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := NewUserService(repo, zap.NewNop(), m)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			user, err := svc.GetOrCreate(context.Background(), 42, "alice")
			if err == nil && user.TelegramID != 42 {
				err = errors.New("wrong user returned")
			}
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
	}
	if repo.Count() != 1 {
		t.Errorf("Count() = %d, want 1", repo.Count())
	}
	if got := testutil.ToFloat64(m.UsersRegisteredTotal); got != 1 {
		t.Errorf("UsersRegisteredTotal = %v, want 1", got)
	}
}

func TestUserService_UpdatePreferences(t *testing.T) {
	tests := []struct {
		name    string
		update  func(*domain.Preferences)
		want    domain.Preferences
		wantErr error
	}{
		{
			name:   "set country",
			update: func(p *domain.Preferences) { p.Country = "fr" },
			want:   domain.Preferences{Country: "fr", Category: domain.CategoryBusiness},
		},
		{
			name:   "clear category",
			update: func(p *domain.Preferences) { p.Category = "" },
			want:   domain.Preferences{Country: "us"},
		},
		{
			name:    "invalid country keeps old value",
			update:  func(p *domain.Preferences) { p.Country = "xx" },
			want:    domain.Preferences{Country: "us", Category: domain.CategoryBusiness},
			wantErr: domain.ErrInvalidCountry,
		},
		{
			name:    "too many sentences",
			update:  func(p *domain.Preferences) { p.SummarySentences = 50 },
			want:    domain.Preferences{Country: "us", Category: domain.CategoryBusiness},
			wantErr: domain.ErrInvalidSentenceCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := repository.NewMockUserRepository()
			repo.GetOrCreate(ctx, 1, "u")
			repo.UpdatePreferences(ctx, 1, domain.Preferences{Country: "us", Category: domain.CategoryBusiness})

			svc := NewUserService(repo, zap.NewNop(), nil)
			got, err := svc.UpdatePreferences(ctx, 1, tt.update)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdatePreferences() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UpdatePreferences() = %+v, want %+v", got, tt.want)
			}

			stored, _ := repo.GetByTelegramID(ctx, 1)
			if stored.Preferences != tt.want {
				t.Errorf("stored = %+v, want %+v", stored.Preferences, tt.want)
			}
		})
	}
}

func TestUserService_UpdatePreferences_UnknownUser(t *testing.T) {
	svc := NewUserService(repository.NewMockUserRepository(), zap.NewNop(), nil)

	_, err := svc.UpdatePreferences(context.Background(), 42, func(p *domain.Preferences) {})

	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("UpdatePreferences() error = %v, want ErrUserNotFound", err)
	}
}
