package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kitbuilder587/newsquery/internal/domain"
	pgRepo "github.com/kitbuilder587/newsquery/internal/repository/postgres"
)

var testDB *pgRepo.DB

func TestMain(m *testing.M) {
	if os.Getenv("SHORT_TESTS") == "1" {
		os.Exit(0)
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	testDB, err = pgRepo.New(ctx, connStr)
	if err != nil {
		panic(err)
	}

	// дважды, чтобы проверить идемпотентность схемы
	for i := 0; i < 2; i++ {
		if err := testDB.Migrate(ctx); err != nil {
			panic(err)
		}
	}

	code := m.Run()

	testDB.Close()
	pgContainer.Terminate(ctx)

	os.Exit(code)
}

func TestUserRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewUserRepo(testDB)

	user, created, err := repo.GetOrCreate(ctx, 12345, "testuser")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created {
		t.Error("GetOrCreate() created = false for a new user")
	}
	if user.ID != 12345 || user.TelegramID != 12345 {
		t.Errorf("user.ID = %v, want %v", user.ID, 12345)
	}
	if user.Preferences != (domain.Preferences{}) {
		t.Errorf("new user preferences = %+v, want empty", user.Preferences)
	}

	user2, created, err := repo.GetOrCreate(ctx, 12345, "updatedname")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if created {
		t.Error("GetOrCreate() created = true for an existing user")
	}
	if user2.Username != "updatedname" {
		t.Errorf("user.Username = %v, want %v", user2.Username, "updatedname")
	}

	found, err := repo.GetByID(ctx, 12345)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ID != 12345 {
		t.Errorf("GetByID() user.ID = %v, want %v", found.ID, 12345)
	}

	_, err = repo.GetByID(ctx, 99999)
	if err != domain.ErrUserNotFound {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Preferences_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewUserRepo(testDB)

	if _, _, err := repo.GetOrCreate(ctx, 777, "prefs"); err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	prefs := domain.Preferences{
		Country:          "gb",
		Category:         domain.CategoryTechnology,
		Language:         "en",
		SummarySentences: 5,
	}
	if err := repo.UpdatePreferences(ctx, 777, prefs); err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}

	found, err := repo.GetByTelegramID(ctx, 777)
	if err != nil {
		t.Fatalf("GetByTelegramID() error = %v", err)
	}
	if found.Preferences != prefs {
		t.Errorf("Preferences = %+v, want %+v", found.Preferences, prefs)
	}

	// GetOrCreate не должен сбрасывать настройки
	again, _, err := repo.GetOrCreate(ctx, 777, "prefs2")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if again.Preferences != prefs {
		t.Errorf("Preferences after GetOrCreate = %+v, want %+v", again.Preferences, prefs)
	}

	if err := repo.UpdatePreferences(ctx, 778, prefs); err != domain.ErrUserNotFound {
		t.Errorf("UpdatePreferences() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ConcurrentFirstContact(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	repo := pgRepo.NewUserRepo(testDB)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, isNew, err := repo.GetOrCreate(ctx, 4242, "racer")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if isNew {
				created++
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("GetOrCreate() errors = %v", errs)
	}
	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}
