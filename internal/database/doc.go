// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── books/           # Reading-log entries, owner filtering, soft delete
//	├── users/           # Username identities
//	└── audit/           # Activity events
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	list, err := booksRepo.ListBooks(ownerID)
//	user, err := usersRepo.GetOrCreateUser("alice")
//
// # Owner Filter
//
// Book operations take an owner ID. Zero means unscoped access, which is
// what the single-user mode uses; any other value restricts reads and
// writes to that user's rows.
package database
