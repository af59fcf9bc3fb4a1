package http

import (
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

// Store interfaces used by the HTTP controllers. The database repositories
// satisfy them; tests may substitute their own.

// BookStore is the reading-log persistence used by the API and HTML views.
// Every method takes an owner filter where zero means unscoped.
type BookStore interface {
	ListBooks(ownerID uint) ([]entities.Book, error)
	LatestBook(ownerID uint) (*entities.Book, error)
	CountBooks(ownerID uint) (int64, error)
	GetBook(id, ownerID uint) (*entities.Book, error)
	CreateBook(title, author string, ownerID uint) (*entities.Book, error)
	UpdateBook(id uint, title, author string, ownerID uint) (*entities.Book, error)
	CreateOrUpdateBook(id uint, title, author string, ownerID uint) (*entities.Book, bool, error)
	SoftDeleteBook(id, ownerID uint) (bool, error)
	MarkStarted(id, ownerID uint, now time.Time) (*entities.Book, error)
	MarkFinished(id, ownerID uint, now time.Time) (*entities.Book, error)
}

// UserStore provides read access to users for the users API.
type UserStore interface {
	ListUsers() ([]entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
}
