package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/utils"
)

const (
	apiRoot      = "/api/"
	apiUsersRoot = "/api/users/"
)

func bookPath(id uint) string {
	return fmt.Sprintf("%s%d/", apiRoot, id)
}

func userPath(id uint) string {
	return fmt.Sprintf("%s%d/", apiUsersRoot, id)
}

// BookResponse is the API representation of a book.
type BookResponse struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Start       *time.Time   `json:"start"`
	Finish      *time.Time   `json:"finish"`
	Created     time.Time    `json:"created"`
	HasFinished bool         `json:"has_finished"`
	Time        int64        `json:"time"`     // elapsed whole seconds
	Duration    string       `json:"duration"` // e.g. "2 days, 3 hours"
	Owner       *UserSummary `json:"owner,omitempty"`
	URL         string       `json:"url"`
	ParentURL   string       `json:"parent_url"`
}

// UserSummary identifies a book's owner.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

// BookRef is a link to one of a user's books.
type BookRef struct {
	ID  uint   `json:"id"`
	URL string `json:"url"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	Books     []BookRef `json:"books"`
	ParentURL string    `json:"parent_url"`
}

// bookSerializer renders books relative to one request and one instant, so
// every entry of a list reports elapsed time against the same "now".
type bookSerializer struct {
	c         *gin.Context
	now       time.Time
	withOwner bool
}

func (s bookSerializer) one(book *entities.Book) BookResponse {
	elapsed := book.ElapsedSeconds(s.now)
	resp := BookResponse{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Start:       book.StartDate,
		Finish:      book.FinishDate,
		Created:     book.CreatedAt,
		HasFinished: book.HasFinished(),
		Time:        elapsed,
		Duration:    utils.FormatDuration(elapsed),
		URL:         absoluteURL(s.c, bookPath(book.ID)),
		ParentURL:   absoluteURL(s.c, apiRoot),
	}
	if s.withOwner && book.User != nil {
		resp.Owner = &UserSummary{
			ID:       book.User.ID,
			Username: book.User.Username,
			URL:      absoluteURL(s.c, userPath(book.User.ID)),
		}
	}
	return resp
}

func (s bookSerializer) many(books []entities.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, s.one(&books[i]))
	}
	return out
}

func serializeUser(c *gin.Context, user *entities.User) UserResponse {
	refs := make([]BookRef, 0, len(user.Books))
	for _, book := range user.Books {
		refs = append(refs, BookRef{ID: book.ID, URL: absoluteURL(c, bookPath(book.ID))})
	}
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		URL:       absoluteURL(c, userPath(user.ID)),
		Books:     refs,
		ParentURL: absoluteURL(c, apiUsersRoot),
	}
}
