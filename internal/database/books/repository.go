// Package books provides database operations for reading-log entries.
//
// Every read and write goes through an owner filter: zero means unscoped,
// any other value restricts the operation to that user's books. Deleted
// books are invisible to all operations.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.CreateBook("Dune", "Frank Herbert", userID)
//	book, err = repo.MarkStarted(book.ID, userID, time.Now())
package books

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readinglog/internal/entities"
)

// ErrNotFound is returned when a book does not exist, is deleted or is
// owned by someone else.
var ErrNotFound = errors.New("book not found")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func visibleTo(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("books.deleted = ?", false)
		if ownerID > 0 {
			db = db.Where("books.user_id = ?", ownerID)
		}
		return db
	}
}

func ownerRef(ownerID uint) *uint {
	if ownerID == 0 {
		return nil
	}
	return &ownerID
}

// ListBooks returns visible books, most recently created first.
func (r *Repository) ListBooks(ownerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Scopes(visibleTo(ownerID)).Preload("User").Order("books.id DESC").Find(&books).Error
	return books, err
}

// LatestBook returns the most recently created visible book.
func (r *Repository) LatestBook(ownerID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Scopes(visibleTo(ownerID)).Preload("User").Order("books.id DESC").First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CountBooks counts visible books.
func (r *Repository) CountBooks(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Scopes(visibleTo(ownerID)).Count(&count).Error
	return count, err
}

// GetBook retrieves a visible book by ID.
func (r *Repository) GetBook(id, ownerID uint) (*entities.Book, error) {
	return getBook(r.db, id, ownerID)
}

func getBook(db *gorm.DB, id, ownerID uint) (*entities.Book, error) {
	var book entities.Book
	err := db.Scopes(visibleTo(ownerID)).Preload("User").First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a new, unstarted book. A zero owner leaves the book
// globally visible.
func (r *Repository) CreateBook(title, author string, ownerID uint) (*entities.Book, error) {
	book := &entities.Book{
		Title:  title,
		Author: author,
		UserID: ownerRef(ownerID),
	}
	if err := r.db.Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return r.GetBook(book.ID, ownerID)
}

// UpdateBook overwrites title and author of a visible book.
func (r *Repository) UpdateBook(id uint, title, author string, ownerID uint) (*entities.Book, error) {
	var updated *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := getBook(tx, id, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Model(book).Updates(map[string]any{"title": title, "author": author}).Error; err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateOrUpdateBook is the upsert entry point: it updates the visible book
// with the given ID or, when there is none, creates a new one. The created
// flag reports which branch was taken.
func (r *Repository) CreateOrUpdateBook(id uint, title, author string, ownerID uint) (*entities.Book, bool, error) {
	book, err := r.UpdateBook(id, title, author, ownerID)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	book, err = r.CreateBook(title, author, ownerID)
	if err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// SoftDeleteBook hides a visible book. It reports whether a book was
// deleted; a missing ID is not an error.
func (r *Repository) SoftDeleteBook(id, ownerID uint) (bool, error) {
	result := r.db.Model(&entities.Book{}).
		Scopes(visibleTo(ownerID)).
		Where("books.id = ?", id).
		Update("deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkStarted stamps the start date unless it is already set.
func (r *Repository) MarkStarted(id, ownerID uint, now time.Time) (*entities.Book, error) {
	var started *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := getBook(tx, id, ownerID)
		if err != nil {
			return err
		}
		if book.StartDate == nil {
			if err := tx.Model(book).Update("start_date", now).Error; err != nil {
				return err
			}
			book.StartDate = &now
		}
		started = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// MarkFinished stamps the finish date when the book has been started and
// not yet finished. The finish date never precedes the start date.
func (r *Repository) MarkFinished(id, ownerID uint, now time.Time) (*entities.Book, error) {
	var finished *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := getBook(tx, id, ownerID)
		if err != nil {
			return err
		}
		if book.StartDate != nil && book.FinishDate == nil {
			stamp := now
			if stamp.Before(*book.StartDate) {
				stamp = *book.StartDate
			}
			if err := tx.Model(book).Update("finish_date", stamp).Error; err != nil {
				return err
			}
			book.FinishDate = &stamp
		}
		finished = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finished, nil
}
