// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: reading-log persistence with an owner filter (internal/http/stores.go)
//   - UserStore: read access for the users API (internal/http/stores.go)
//   - UserRepository: username lookup and creation at login (internal/auth/service.go)
//   - Pinger: database health for /health (internal/http/health.go)
//
// ## Background Work Interfaces
//
//   - AuditEventCleaner: deletes audit events past retention (internal/tasks/cleanup_audit.go)
//   - AuditCleanupEnqueuer: runs or queues a cleanup (internal/scheduler/audit_cleanup.go)
//
// # Owner Filters
//
// Every BookStore method takes an ownerID. Zero means unscoped and is used
// in single-user mode; any other value restricts reads and writes to that
// user's books. A book owned by someone else behaves exactly like a missing
// one.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the entity to the AutoMigrate list in internal/database/database.go
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
