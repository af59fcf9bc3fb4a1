package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/parsers"
)

func newImportCommand(cfg func() *config.Config) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: `Add books from a file with one "<title> by <author>" per line`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := cfg()
			policy, err := parsers.ParseWhitespacePolicy(conf.Books.WhitespacePolicy)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, result, err := parsers.ParseReadingList(f, policy)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			s, err := openStores(conf)
			if err != nil {
				return err
			}
			defer s.Close()

			var ownerID uint
			if username != "" {
				user, _, err := auth.NewService(s.users, conf.Auth).Login(username)
				if err != nil {
					return fmt.Errorf("user %q: %w", username, err)
				}
				ownerID = user.ID
			}

			for _, entry := range entries {
				if _, err := s.books.CreateBook(entry.Title, entry.Author, ownerID); err != nil {
					return fmt.Errorf("line %d: %w", entry.Line, err)
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "owner of the imported books, created if missing")
	return cmd
}
