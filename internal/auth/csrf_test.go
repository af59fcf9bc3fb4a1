package auth

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFSecret = []byte("0123456789abcdef0123456789abcdef")

func setupCSRFRouter(t *testing.T) (*gin.Engine, *int) {
	t.Helper()
	reached := 0

	router := gin.New()
	router.Use(CSRFMiddleware(testCSRFSecret, false))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/form", func(c *gin.Context) {
		reached++
		c.String(http.StatusOK, "accepted")
	})
	router.POST("/api/", func(c *gin.Context) {
		reached++
		c.Status(http.StatusCreated)
	})
	return router, &reached
}

func TestCSRFMiddleware_IssuesToken(t *testing.T) {
	router, _ := setupCSRFRouter(t)

	w := get(router, "/form", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestCSRFMiddleware_RejectsMissingToken(t *testing.T) {
	router, reached := setupCSRFRouter(t)

	w := postForm(router, "/form", url.Values{"x": {"1"}}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Form expired")
	assert.Zero(t, *reached, "handler must not run after a CSRF failure")
}

func TestCSRFMiddleware_AcceptsValidToken(t *testing.T) {
	router, reached := setupCSRFRouter(t)

	w := get(router, "/form", nil)
	token := w.Body.String()
	cookies := w.Result().Cookies()

	w = postForm(router, "/form", url.Values{CSRFFieldName: {token}}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", w.Body.String())
	assert.Equal(t, 1, *reached)
}

func TestCSRFMiddleware_SkipsAPI(t *testing.T) {
	router, reached := setupCSRFRouter(t)

	w := postForm(router, "/api/", url.Values{"text": {"Dune by Frank Herbert"}}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *reached)
}
