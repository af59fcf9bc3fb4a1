// Package cli exposes the server and maintenance commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/database/users"
	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/log"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	var cfg *config.Config

	serve := func(cmd *cobra.Command, args []string) error {
		return entrypoint.Run(cfg, version)
	}

	root := &cobra.Command{
		Use:           "readinglog",
		Short:         "Reading log with an HTML view and a JSON API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.NewConfig()
			return cfg.Validate()
		},
		RunE: serve,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newBooksCommand(func() *config.Config { return cfg }),
		newUsersCommand(func() *config.Config { return cfg }),
		newImportCommand(func() *config.Config { return cfg }),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	db    *database.Database
	books *books.Repository
	users *users.Repository
}

// openStores is used by the maintenance commands. Log output stays at warn
// so it does not interleave with command output.
func openStores(cfg *config.Config) (*stores, error) {
	opts := log.Options(cfg.Log)
	opts.Level = "warn"
	if err := log.Init(opts); err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &stores{
		db:    db,
		books: books.NewRepository(db.DB),
		users: users.NewRepository(db.DB),
	}, nil
}

func (s *stores) Close() {
	if err := s.db.Close(); err != nil {
		log.Logger.Sugar().Errorw("Error closing database", "error", err)
	}
	log.Sync()
}

// ownerFilter resolves --user to an owner ID. An empty name is unscoped.
func (s *stores) ownerFilter(username string) (uint, error) {
	if username == "" {
		return 0, nil
	}
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", username, err)
	}
	return user.ID, nil
}
