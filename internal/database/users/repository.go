// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetOrCreateUser("alice")
package users

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readinglog/internal/entities"
)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notDeletedBooks(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false).Order("id DESC")
}

// GetOrCreateUser returns the user with the given username, creating it on
// first use. Concurrent first logins resolve to the same row.
func (r *Repository) GetOrCreateUser(username string) (*entities.User, bool, error) {
	user, err := r.GetUserByUsername(username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	created := &entities.User{Username: username}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(created)
	if result.Error != nil {
		return nil, false, result.Error
	}

	user, err = r.GetUserByUsername(username)
	if err != nil {
		return nil, false, err
	}
	return user, result.RowsAffected > 0, nil
}

// GetUserByID retrieves a user by ID along with their visible books.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Books", notDeletedBooks).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by ID, each with their visible books.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Preload("Books", notDeletedBooks).Order("id ASC").Find(&users).Error
	return users, err
}
