package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/newsquery/internal/domain"
)

type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User // key: TelegramID
	nextID int64

	// Err, если задан, возвращается из всех методов
	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) WithError(err error) *MockUserRepository {
	m.Err = err
	return m
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, false, m.Err
	}

	if user, exists := m.users[telegramID]; exists {
		user.Username = username
		return copyUser(user), false, nil
	}

	user := &domain.User{
		ID:         m.nextID,
		TelegramID: telegramID,
		Username:   username,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.users[telegramID] = user
	return copyUser(user), true, nil
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	if user, exists := m.users[telegramID]; exists {
		return copyUser(user), nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, telegramID int64, prefs domain.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	user, exists := m.users[telegramID]
	if !exists {
		return domain.ErrUserNotFound
	}
	user.Preferences = prefs
	return nil
}

func (m *MockUserRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

var _ UserRepository = (*MockUserRepository)(nil)
