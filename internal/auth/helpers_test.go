package auth

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database/users"
	"github.com/mrlokans/readinglog/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuthConfig = config.Auth{
	Mode:            config.AuthModeLocal,
	SessionLifetime: 24 * time.Hour,
	SecureCookies:   false,
}

const testLoginTemplate = `{{define "login.html"}}login next={{.Next}} error={{.Error}} token={{.CSRFToken}}{{end}}`

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupSessionManager(t *testing.T, db *gorm.DB) *SessionManager {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.DriverSQLite, testAuthConfig)
	require.NoError(t, err)
	return sm
}

// setupTestRouter wires sessions, middleware and the auth controller the
// way the HTTP surface does, plus a protected page and API route.
func setupTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	db := setupTestDB(t)
	sm := setupSessionManager(t, db)
	svc := NewService(users.NewRepository(db), testAuthConfig)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(testLoginTemplate)))
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm, testAuthConfig).Handler())

	NewAuthController(svc, sm, nil).RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "home user=%d name=%s", GetUserID(c), GetUsername(c))
	})
	router.GET("/api/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	return router, svc
}

func postForm(router http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}
