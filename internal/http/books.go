package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/parsers"
)

// BooksOptions tunes the behaviour shared by the API and HTML controllers.
type BooksOptions struct {
	WhitespacePolicy parsers.WhitespacePolicy
	UpsertOnUpdate   bool // PUT on a missing id creates a book instead of 404
	MultiUser        bool // include the owner in book JSON
}

// BooksController serves the JSON reading-log API under /api/.
type BooksController struct {
	store   BookStore
	audit   *audit.Service
	options BooksOptions
	now     func() time.Time
}

func NewBooksController(store BookStore, auditService *audit.Service, options BooksOptions) *BooksController {
	return &BooksController{
		store:   store,
		audit:   auditService,
		options: options,
		now:     time.Now,
	}
}

func (controller *BooksController) serializer(c *gin.Context) bookSerializer {
	return bookSerializer{c: c, now: controller.now(), withOwner: controller.options.MultiUser}
}

// parseText extracts title and author from the request body. Parse
// failures are answered with a 400 carrying the parser message.
func (controller *BooksController) parseText(c *gin.Context) (string, string, bool) {
	text, err := bindText(c)
	if err != nil {
		respondBadRequest(c, parsers.ErrEmptyText.Error())
		return "", "", false
	}
	title, author, err := parsers.ParseTitleAuthor(text, controller.options.WhitespacePolicy)
	if err != nil {
		respondBadRequest(c, err.Error())
		return "", "", false
	}
	return title, author, true
}

// ListBooks handles GET /api/
func (controller *BooksController) ListBooks(c *gin.Context) {
	list, err := controller.store.ListBooks(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, controller.serializer(c).many(list))
}

// CreateBook handles POST /api/
func (controller *BooksController) CreateBook(c *gin.Context) {
	title, author, ok := controller.parseText(c)
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	book, err := controller.store.CreateBook(title, author, userID)
	if err != nil {
		controller.audit.LogBook(userID, entities.AuditActionBookCreate, 0, nil, err)
		respondInternalError(c, err, "create book")
		return
	}

	controller.audit.LogBook(userID, entities.AuditActionBookCreate, book.ID, book, nil)
	c.JSON(http.StatusCreated, controller.serializer(c).one(book))
}

// LatestBook handles GET /api/latest/. An empty log answers 204.
func (controller *BooksController) LatestBook(c *gin.Context) {
	book, err := controller.store.LatestBook(auth.GetUserID(c))
	if errors.Is(err, books.ErrNotFound) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		respondInternalError(c, err, "latest book")
		return
	}
	c.JSON(http.StatusOK, controller.serializer(c).one(book))
}

// GetBook handles GET /api/:id/
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetBook(id, auth.GetUserID(c))
	if errors.Is(err, books.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, controller.serializer(c).one(book))
}

// UpdateBook handles PUT /api/:id/. With upserts enabled a missing id
// creates a new book, which gets a fresh id.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	title, author, ok := controller.parseText(c)
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	var (
		book    *entities.Book
		created bool
		err     error
	)
	if controller.options.UpsertOnUpdate {
		book, created, err = controller.store.CreateOrUpdateBook(id, title, author, userID)
	} else {
		book, err = controller.store.UpdateBook(id, title, author, userID)
	}

	if errors.Is(err, books.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		controller.audit.LogBook(userID, entities.AuditActionBookUpdate, id, nil, err)
		respondInternalError(c, err, "update book")
		return
	}

	action := entities.AuditActionBookUpdate
	if created {
		action = entities.AuditActionBookUpsert
	}
	controller.audit.LogBook(userID, action, book.ID, book, nil)
	c.JSON(http.StatusAccepted, controller.serializer(c).one(book))
}

// DeleteBook handles DELETE /api/:id/. Missing ids also answer 204.
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	deleted, err := controller.store.SoftDeleteBook(id, userID)
	if err != nil {
		controller.audit.LogBook(userID, entities.AuditActionBookDelete, id, nil, err)
		respondInternalError(c, err, "delete book")
		return
	}
	if deleted {
		controller.audit.LogBook(userID, entities.AuditActionBookDelete, id, nil, nil)
	}
	c.Status(http.StatusNoContent)
}

// StartBook handles PUT /api/:id/start/
func (controller *BooksController) StartBook(c *gin.Context) {
	controller.stamp(c, entities.AuditActionBookStart, controller.store.MarkStarted)
}

// FinishBook handles PUT /api/:id/finish/. Books that were never started
// are returned unchanged.
func (controller *BooksController) FinishBook(c *gin.Context) {
	controller.stamp(c, entities.AuditActionBookFinish, controller.store.MarkFinished)
}

type stampFunc func(id, ownerID uint, now time.Time) (*entities.Book, error)

func (controller *BooksController) stamp(c *gin.Context, action string, mark stampFunc) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	now := controller.now()
	book, err := mark(id, userID, now)
	if errors.Is(err, books.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		controller.audit.LogBook(userID, action, id, nil, err)
		respondInternalError(c, err, action)
		return
	}

	controller.audit.LogBook(userID, action, book.ID, book, nil)
	s := controller.serializer(c)
	s.now = now
	c.JSON(http.StatusAccepted, s.one(book))
}
