package auth

import (
	"net/http"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
)

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t, setupTestDB(t))

	require.NotNil(t, sm.SessionManager)
	assert.Equal(t, "session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.Equal(t, testAuthConfig.SessionLifetime, sm.Lifetime)
	assert.Equal(t, testAuthConfig.SessionLifetime/2, sm.IdleTimeout)
}

func TestNewSessionManager_MemoryStoreForPostgres(t *testing.T) {
	sm, err := NewSessionManager(nil, config.DriverPostgres, testAuthConfig)
	require.NoError(t, err)

	_, ok := sm.Store.(*memstore.MemStore)
	assert.True(t, ok, "expected in-memory store, got %T", sm.Store)
}

func TestSessionManager_RoundTrip(t *testing.T) {
	sm := setupSessionManager(t, setupTestDB(t))

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/in", func(c *gin.Context) {
		require.NoError(t, sm.CreateSession(c.Request, &entities.User{ID: 42, Username: "alice"}))
		c.Status(http.StatusNoContent)
	})
	router.GET("/who", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":            sm.GetUserID(c.Request),
			"username":      sm.GetUsername(c.Request),
			"authenticated": sm.IsAuthenticated(c.Request),
		})
	})
	router.POST("/out", func(c *gin.Context) {
		require.NoError(t, sm.DestroySession(c.Request))
		c.Redirect(http.StatusFound, "/")
	})

	w := postForm(router, "/in", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie, "session cookie should be written even without a body")

	w = get(router, "/who", []*http.Cookie{cookie})
	assert.JSONEq(t, `{"id":42,"username":"alice","authenticated":true}`, w.Body.String())

	w = get(router, "/who", nil)
	assert.JSONEq(t, `{"id":0,"username":"","authenticated":false}`, w.Body.String())

	w = postForm(router, "/out", nil, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusFound, w.Code)
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = get(router, "/who", []*http.Cookie{cookie})
	assert.JSONEq(t, `{"id":0,"username":"","authenticated":false}`, w.Body.String())
}
