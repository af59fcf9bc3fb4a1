package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/database/books"
)

// setupBooksAPI registers the API routes around a controller whose clock
// the test controls.
func setupBooksAPI(t *testing.T, options BooksOptions) (*gin.Engine, *BooksController, *time.Time) {
	t.Helper()
	db := setupTestDB(t)
	controller := NewBooksController(books.NewRepository(db.DB), setupAuditService(t, db), options)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	controller.now = func() time.Time { return now }

	router := gin.New()
	api := router.Group(apiRoot)
	api.GET("/", controller.ListBooks)
	api.POST("/", controller.CreateBook)
	api.GET("/latest/", controller.LatestBook)
	api.GET("/:id/", controller.GetBook)
	api.PUT("/:id/", controller.UpdateBook)
	api.DELETE("/:id/", controller.DeleteBook)
	api.PUT("/:id/start/", controller.StartBook)
	api.PUT("/:id/finish/", controller.FinishBook)
	return router, controller, &now
}

func TestBooksController_ListBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doRequest(router, http.MethodGet, "/api/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("returns newest first", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)
		doRequest(router, http.MethodPost, "/api/", `{"text":"Emma by Jane Austen"}`)

		list := decodeBooks(t, doRequest(router, http.MethodGet, "/api/", ""))
		require.Len(t, list, 2)
		assert.Equal(t, "Emma", list[0].Title)
		assert.Equal(t, "Dune", list[1].Title)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates from json", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doRequest(router, http.MethodPost, "/api/", `{"text":"  Dune by Frank Herbert "}`)
		require.Equal(t, http.StatusCreated, w.Code)

		book := decodeBook(t, w)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
		assert.Nil(t, book.Start)
		assert.Nil(t, book.Finish)
		assert.False(t, book.HasFinished)
		assert.Equal(t, int64(0), book.Time)
		assert.Equal(t, "", book.Duration)
		assert.False(t, book.Created.IsZero())
		assert.Equal(t, "http://example.com/api/1/", book.URL)
		assert.Equal(t, "http://example.com/api/", book.ParentURL)
		assert.Nil(t, book.Owner)
	})

	t.Run("creates from form", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doForm(router, "/api/", map[string][]string{"text": {"Emma by Jane Austen"}})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Jane Austen", decodeBook(t, w).Author)
	})

	t.Run("strips markup", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doRequest(router, http.MethodPost, "/api/", `{"text":"<b>Dune</b> by <script>x</script>Frank Herbert"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		book := decodeBook(t, w)
		assert.Equal(t, "Dune", book.Title)
		assert.NotContains(t, book.Author, "<")
	})

	t.Run("strips entity-encoded markup", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doRequest(router, http.MethodPost, "/api/", `{"text":"&lt;script&gt;alert(1)&lt;/script&gt;Dune by &lt;i&gt;Frank Herbert&lt;/i&gt;"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "<script>")
		book := decodeBook(t, w)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, "Frank Herbert", book.Author)
	})

	t.Run("strip policy removes inner whitespace", func(t *testing.T) {
		options := defaultOptions()
		options.WhitespacePolicy = "strip"
		router, _, _ := setupBooksAPI(t, options)

		w := doRequest(router, http.MethodPost, "/api/", `{"text":"War and Peace by Leo Tolstoy"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		book := decodeBook(t, w)
		assert.Equal(t, "WarandPeace", book.Title)
		assert.Equal(t, "LeoTolstoy", book.Author)
	})

	t.Run("rejects malformed text", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		tests := []struct {
			body string
			want string
		}{
			{`{"text":"Dune"}`, "Expected: {title} by {author}."},
			{`{"text":"Dune by"}`, "Expected: {title} by {author}."},
			{`{"text":"by Frank Herbert"}`, "Expected: {title} by {author}."},
			{`{"text":""}`, "Please enter text."},
			{`{"text":"   "}`, "Please enter text."},
			{`{}`, "Please enter text."},
			{`{"text":`, "Please enter text."},
		}
		for _, tt := range tests {
			w := doRequest(router, http.MethodPost, "/api/", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, tt.body)
			assert.Equal(t, tt.want, decodeMessage(t, w), tt.body)
		}

		assert.JSONEq(t, `[]`, doRequest(router, http.MethodGet, "/api/", "").Body.String())
	})
}

func TestBooksController_LatestBook(t *testing.T) {
	router, _, _ := setupBooksAPI(t, defaultOptions())

	w := doRequest(router, http.MethodGet, "/api/latest/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)
	doRequest(router, http.MethodPost, "/api/", `{"text":"Emma by Jane Austen"}`)

	w = doRequest(router, http.MethodGet, "/api/latest/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Emma", decodeBook(t, w).Title)
}

func TestBooksController_GetBook(t *testing.T) {
	router, _, _ := setupBooksAPI(t, defaultOptions())
	doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)

	w := doRequest(router, http.MethodGet, "/api/1/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), decodeBook(t, w).ID)

	for _, path := range []string{"/api/2/", "/api/abc/", "/api/0/"} {
		w := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("updates an existing book", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())
		doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)

		w := doRequest(router, http.MethodPut, "/api/1/", `{"text":"Dune Messiah by Frank Herbert"}`)
		require.Equal(t, http.StatusAccepted, w.Code)
		book := decodeBook(t, w)
		assert.Equal(t, uint(1), book.ID)
		assert.Equal(t, "Dune Messiah", book.Title)

		assert.Len(t, decodeBooks(t, doRequest(router, http.MethodGet, "/api/", "")), 1)
	})

	t.Run("creates a book for a missing id", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		w := doRequest(router, http.MethodPut, "/api/42/", `{"text":"Emma by Jane Austen"}`)
		require.Equal(t, http.StatusAccepted, w.Code)
		book := decodeBook(t, w)
		assert.Equal(t, "Emma", book.Title)
		assert.NotZero(t, book.ID)

		assert.Len(t, decodeBooks(t, doRequest(router, http.MethodGet, "/api/", "")), 1)
	})

	t.Run("missing id is 404 when upserts are off", func(t *testing.T) {
		options := defaultOptions()
		options.UpsertOnUpdate = false
		router, _, _ := setupBooksAPI(t, options)

		w := doRequest(router, http.MethodPut, "/api/42/", `{"text":"Emma by Jane Austen"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `[]`, doRequest(router, http.MethodGet, "/api/", "").Body.String())
	})

	t.Run("rejects malformed text", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())
		doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)

		w := doRequest(router, http.MethodPut, "/api/1/", `{"text":"no separator"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Expected: {title} by {author}.", decodeMessage(t, w))

		assert.Equal(t, "Dune", decodeBook(t, doRequest(router, http.MethodGet, "/api/1/", "")).Title)
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	router, _, _ := setupBooksAPI(t, defaultOptions())
	doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)

	w := doRequest(router, http.MethodDelete, "/api/1/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/api/1/", "").Code)
	assert.JSONEq(t, `[]`, doRequest(router, http.MethodGet, "/api/", "").Body.String())

	// Deleting again, or deleting an id that never existed, is not an error
	assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, "/api/1/", "").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, "/api/999/", "").Code)
}

func TestBooksController_StartFinish(t *testing.T) {
	t.Run("finish before start is a no-op", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())
		doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)

		w := doRequest(router, http.MethodPut, "/api/1/finish/", "")
		require.Equal(t, http.StatusAccepted, w.Code)
		book := decodeBook(t, w)
		assert.Nil(t, book.Start)
		assert.Nil(t, book.Finish)
		assert.False(t, book.HasFinished)
	})

	t.Run("stamps succeed while activity is recorded", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		const count = 40
		for i := 0; i < count; i++ {
			w := doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		for id := 1; id <= count; id++ {
			for _, action := range []string{"start", "finish"} {
				path := fmt.Sprintf("/api/%d/%s/", id, action)
				w := doRequest(router, http.MethodPut, path, "")
				assert.Equal(t, http.StatusAccepted, w.Code, path)
			}
		}
	})

	t.Run("tracks reading time", func(t *testing.T) {
		router, _, now := setupBooksAPI(t, defaultOptions())
		doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`)
		started := *now

		w := doRequest(router, http.MethodPut, "/api/1/start/", "")
		require.Equal(t, http.StatusAccepted, w.Code)
		book := decodeBook(t, w)
		require.NotNil(t, book.Start)
		assert.True(t, started.Equal(*book.Start))
		assert.Equal(t, int64(0), book.Time)

		// In progress: elapsed time is measured against the clock
		*now = started.Add(90 * time.Minute)
		book = decodeBook(t, doRequest(router, http.MethodGet, "/api/1/", ""))
		assert.Equal(t, int64(5400), book.Time)
		assert.Equal(t, "1 hour, 30 minutes", book.Duration)

		// Starting again keeps the original stamp
		*now = started.Add(2 * time.Hour)
		book = decodeBook(t, doRequest(router, http.MethodPut, "/api/1/start/", ""))
		assert.True(t, started.Equal(*book.Start))

		*now = started.Add(26*time.Hour + time.Second)
		w = doRequest(router, http.MethodPut, "/api/1/finish/", "")
		require.Equal(t, http.StatusAccepted, w.Code)
		book = decodeBook(t, w)
		assert.True(t, book.HasFinished)
		assert.Equal(t, "1 day, 2 hours, 1 second", book.Duration)

		// Finished books stop counting
		*now = started.Add(30 * 24 * time.Hour)
		book = decodeBook(t, doRequest(router, http.MethodGet, "/api/1/", ""))
		assert.Equal(t, int64(26*3600+1), book.Time)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		router, _, _ := setupBooksAPI(t, defaultOptions())

		assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPut, "/api/5/start/", "").Code)
		assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPut, "/api/5/finish/", "").Code)
	})
}

func TestBooksController_RecordsActivity(t *testing.T) {
	db := setupTestDB(t)
	auditService := setupAuditService(t, db)
	controller := NewBooksController(books.NewRepository(db.DB), auditService, defaultOptions())

	router := gin.New()
	router.POST("/api/", controller.CreateBook)
	router.DELETE("/api/:id/", controller.DeleteBook)

	require.Equal(t, http.StatusCreated, doRequest(router, http.MethodPost, "/api/", `{"text":"Dune by Frank Herbert"}`).Code)
	auditService.Wait()
	require.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, "/api/1/", "").Code)
	require.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, "/api/1/", "").Code)
	auditService.Wait()

	events, total, err := auditService.GetEvents(0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "book_delete", events[0].Action)
	assert.Equal(t, "book_create", events[1].Action)
	assert.Contains(t, events[1].Description, "Dune")
}
