package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/log"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(log.AccessLog())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	multiUser := cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled()
	cfg.Options.MultiUser = multiUser

	if multiUser {
		auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.Audit).RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.Audit, cfg.Options)
	uiController := NewUIController(cfg.Books, cfg.Audit, cfg.Options)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Books API endpoints
	api := router.Group(apiRoot)
	api.GET("/", booksController.ListBooks)
	api.POST("/", booksController.CreateBook)
	api.GET("/latest/", booksController.LatestBook)
	api.GET("/:id/", booksController.GetBook)
	api.PUT("/:id/", booksController.UpdateBook)
	api.DELETE("/:id/", booksController.DeleteBook)
	api.PUT("/:id/start/", booksController.StartBook)
	api.PUT("/:id/finish/", booksController.FinishBook)

	// Users API endpoints
	if multiUser && cfg.Users != nil {
		usersController := NewUsersController(cfg.Users)
		api.GET("/users/", usersController.ListUsers)
		api.GET("/users/:id/", usersController.GetUser)
	}

	// Activity endpoints
	if cfg.Audit != nil {
		activityController := NewActivityController(cfg.Audit)
		api.GET("/activity/", activityController.GetActivity)
		router.GET("/activity/", activityController.ActivityPage)
	}

	// UI routes
	router.GET("/", uiController.BooksPage)
	router.POST("/", uiController.CreateBook)
	router.GET("/book/:id/", uiController.BookPage)
	router.POST("/book/:id/start/", uiController.StartBook)
	router.POST("/book/:id/finish/", uiController.FinishBook)
	router.POST("/book/:id/delete/", uiController.DeleteBook)

	router.NoRoute(renderNotFound)
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Message: "method not allowed"})
	})

	return router, nil
}
