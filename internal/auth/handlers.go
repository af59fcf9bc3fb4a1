package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/log"
)

// LoginTemplate is the name of the login page template.
const LoginTemplate = "login.html"

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	switch {
	case path == "":
		return false
	case !strings.HasPrefix(path, "/"):
		return false
	case strings.HasPrefix(path, "//"): // protocol-relative
		return false
	case strings.Contains(path, "://"):
		return false
	case strings.Contains(path, "\\"):
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) && !strings.HasPrefix(path, LoginPath) {
		return path
	}
	return "/"
}

// AuthController handles login and logout.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	audit          *audit.Service
}

// NewAuthController creates a new authentication controller. The audit
// service may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, auditService *audit.Service) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		audit:          auditService,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET(LoginPath, ac.LoginPage)
	router.POST(LoginPath, ac.Login)
	router.GET("/logout", ac.Logout)
	router.POST("/logout", ac.Logout)
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderLogin(c, http.StatusOK, sanitizeRedirectPath(c.Query("next")), "", "")
}

// Login resolves the submitted username and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := sanitizeRedirectPath(c.PostForm("next"))

	user, created, err := ac.service.Login(username)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		if !errors.Is(err, ErrUsernameRequired) && !errors.Is(err, ErrUsernameInvalid) {
			log.Error("Login failed", zap.Error(err))
			status = http.StatusInternalServerError
			message = "Login failed, please try again."
		}
		ac.audit.LogAuth(0, entities.AuditActionLogin, c.ClientIP(), c.Request.UserAgent(), false)
		ac.renderLogin(c, status, next, username, message)
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Error("Failed to create session", zap.Uint("user_id", user.ID), zap.Error(err))
		ac.renderLogin(c, http.StatusInternalServerError, next, username, "Failed to create session")
		return
	}

	if created {
		log.Info("Created user on first login", zap.String("username", user.Username))
	}
	ac.audit.LogAuth(user.ID, entities.AuditActionLogin, c.ClientIP(), c.Request.UserAgent(), true)

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to the index.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := ac.sessionManager.GetUserID(c.Request)
	if userID != 0 {
		ac.audit.LogAuth(userID, entities.AuditActionLogout, c.ClientIP(), c.Request.UserAgent(), true)
	}
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Warn("Failed to destroy session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) renderLogin(c *gin.Context, status int, next, username, errMsg string) {
	c.HTML(status, LoginTemplate, gin.H{
		"Title":         "Login",
		"Next":          next,
		"Username":      username,
		"Error":         errMsg,
		"CSRFToken":     GetCSRFToken(c),
		"CSRFFieldName": CSRFFieldName,
	})
}
