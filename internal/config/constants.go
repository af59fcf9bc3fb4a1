package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./readinglog.db"

	// DefaultTasksDatabasePath is used for the task queue when the main
	// database is not a sqlite file.
	DefaultTasksDatabasePath = "./readinglog-tasks.db"
)
