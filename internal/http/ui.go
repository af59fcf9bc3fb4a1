package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/parsers"
)

// BookView is a book prepared for the HTML templates.
type BookView struct {
	ID          uint
	Title       string
	Author      string
	Start       *time.Time
	Finish      *time.Time
	Created     time.Time
	Started     bool
	HasFinished bool
	Elapsed     int64
	Owner       string
}

func newBookView(book *entities.Book, now time.Time) BookView {
	view := BookView{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Start:       book.StartDate,
		Finish:      book.FinishDate,
		Created:     book.CreatedAt,
		Started:     book.StartDate != nil,
		HasFinished: book.HasFinished(),
		Elapsed:     book.ElapsedSeconds(now),
	}
	if book.User != nil {
		view.Owner = book.User.Username
	}
	return view
}

// UIController serves the server-rendered reading log.
type UIController struct {
	store   BookStore
	audit   *audit.Service
	options BooksOptions
	now     func() time.Time
}

func NewUIController(store BookStore, auditService *audit.Service, options BooksOptions) *UIController {
	return &UIController{
		store:   store,
		audit:   auditService,
		options: options,
		now:     time.Now,
	}
}

// BooksPage renders the list with an add form.
// GET /
func (controller *UIController) BooksPage(c *gin.Context) {
	controller.renderBooks(c, http.StatusOK, "", "")
}

func (controller *UIController) renderBooks(c *gin.Context, status int, text, formError string) {
	userID := auth.GetUserID(c)
	list, err := controller.store.ListBooks(userID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Error loading books")
		return
	}

	total, err := controller.store.CountBooks(userID)
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Error loading books")
		return
	}

	now := controller.now()
	views := make([]BookView, 0, len(list))
	for i := range list {
		views = append(views, newBookView(&list[i], now))
	}

	c.HTML(status, "index.html", gin.H{
		"Title":      "Reading log",
		"Books":      views,
		"TotalBooks": total,
		"ShowOwner":  controller.options.MultiUser,
		"Text":       text,
		"Error":      formError,
		"Auth":       GetAuthTemplateData(c),
	})
}

// CreateBook adds a book from the index form.
// POST /
func (controller *UIController) CreateBook(c *gin.Context) {
	text := c.PostForm("text")
	title, author, err := parsers.ParseTitleAuthor(text, controller.options.WhitespacePolicy)
	if err != nil {
		controller.renderBooks(c, http.StatusBadRequest, text, err.Error())
		return
	}

	userID := auth.GetUserID(c)
	book, err := controller.store.CreateBook(title, author, userID)
	if err != nil {
		controller.audit.LogBook(userID, entities.AuditActionBookCreate, 0, nil, err)
		renderError(c, http.StatusInternalServerError, "Error saving book")
		return
	}

	controller.audit.LogBook(userID, entities.AuditActionBookCreate, book.ID, book, nil)
	c.Redirect(http.StatusFound, "/")
}

// BookPage renders a single book.
// GET /book/:id/
func (controller *UIController) BookPage(c *gin.Context) {
	book, ok := controller.lookup(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "book.html", gin.H{
		"Title":     book.Title,
		"Book":      newBookView(book, controller.now()),
		"ShowOwner": controller.options.MultiUser,
		"Auth":      GetAuthTemplateData(c),
	})
}

// StartBook stamps the start date and returns to the book page.
// POST /book/:id/start/
func (controller *UIController) StartBook(c *gin.Context) {
	controller.stamp(c, entities.AuditActionBookStart, controller.store.MarkStarted)
}

// FinishBook stamps the finish date and returns to the book page.
// POST /book/:id/finish/
func (controller *UIController) FinishBook(c *gin.Context) {
	controller.stamp(c, entities.AuditActionBookFinish, controller.store.MarkFinished)
}

func (controller *UIController) stamp(c *gin.Context, action string, mark stampFunc) {
	id, ok := controller.pageID(c)
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	book, err := mark(id, userID, controller.now())
	if errors.Is(err, books.ErrNotFound) {
		renderNotFound(c)
		return
	}
	if err != nil {
		controller.audit.LogBook(userID, action, id, nil, err)
		renderError(c, http.StatusInternalServerError, "Error updating book")
		return
	}

	controller.audit.LogBook(userID, action, book.ID, book, nil)
	c.Redirect(http.StatusFound, bookPagePath(book.ID))
}

// DeleteBook hides the book and returns to the list.
// POST /book/:id/delete/
func (controller *UIController) DeleteBook(c *gin.Context) {
	id, ok := controller.pageID(c)
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	deleted, err := controller.store.SoftDeleteBook(id, userID)
	if err != nil {
		controller.audit.LogBook(userID, entities.AuditActionBookDelete, id, nil, err)
		renderError(c, http.StatusInternalServerError, "Error deleting book")
		return
	}
	if deleted {
		controller.audit.LogBook(userID, entities.AuditActionBookDelete, id, nil, nil)
	}
	c.Redirect(http.StatusFound, "/")
}

func (controller *UIController) pageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		renderNotFound(c)
		return 0, false
	}
	return uint(id), true
}

func (controller *UIController) lookup(c *gin.Context) (*entities.Book, bool) {
	id, ok := controller.pageID(c)
	if !ok {
		return nil, false
	}

	book, err := controller.store.GetBook(id, auth.GetUserID(c))
	if errors.Is(err, books.ErrNotFound) {
		renderNotFound(c)
		return nil, false
	}
	if err != nil {
		renderError(c, http.StatusInternalServerError, "Error loading book")
		return nil, false
	}
	return book, true
}

func bookPagePath(id uint) string {
	return fmt.Sprintf("/book/%d/", id)
}

// renderNotFound renders the 404 page. It doubles as the router's NoRoute
// handler, where API paths get a JSON body instead.
func renderNotFound(c *gin.Context) {
	if isJSONRequest(c) || hasAPIPrefix(c) {
		respondNotFound(c, "resource")
		return
	}
	renderError(c, http.StatusNotFound, "Page not found")
}

func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
		"Auth":    GetAuthTemplateData(c),
	})
}
