// Package auth resolves the identity behind each request.
//
// It supports two modes:
//   - "none": No login (default), every request runs unscoped with DefaultUserID
//   - "local": Username login with session cookies; books are scoped per user
//
// Logging in is an identity claim rather than a credential check: the first
// login with a username creates the user, later logins reuse it.
//
// # Configuration
//
//	AUTH_MODE=none   # Default, no login
//	AUTH_MODE=local  # Login by username
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(usersRepo, cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Database.Driver, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions, cfg.Auth).Handler())
//
// Extract the owner filter in handlers:
//
//	ownerID := auth.GetUserID(c)  // DefaultUserID in "none" mode
package auth
