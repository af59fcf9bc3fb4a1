package users

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglog/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

func TestRepository_GetOrCreateUser(t *testing.T) {
	repo, _ := setupTestDB(t)

	user, created, err := repo.GetOrCreateUser("alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)

	again, created, err := repo.GetOrCreateUser("alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	other, created, err := repo.GetOrCreateUser("bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, user.ID, other.ID)
}

func TestRepository_GetOrCreateUser_Concurrent(t *testing.T) {
	repo, db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, _, err := repo.GetOrCreateUser("carol")
			if assert.NoError(t, err) {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var count int64
	require.NoError(t, db.Model(&entities.User{}).Where("username = ?", "carol").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, db := setupTestDB(t)

	user, _, err := repo.GetOrCreateUser("alice")
	require.NoError(t, err)

	visible := &entities.Book{Title: "Dune", Author: "Frank Herbert", UserID: &user.ID}
	hidden := &entities.Book{Title: "Gone", Author: "Nobody", UserID: &user.ID, Deleted: true}
	require.NoError(t, db.Create(visible).Error)
	require.NoError(t, db.Create(hidden).Error)

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	require.Len(t, got.Books, 1)
	assert.Equal(t, visible.ID, got.Books[0].ID)

	_, err = repo.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_GetUserByUsername_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListUsers(t *testing.T) {
	repo, _ := setupTestDB(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, _, err := repo.GetOrCreateUser(name)
		require.NoError(t, err)
	}

	users, err := repo.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[2].Username)
}
