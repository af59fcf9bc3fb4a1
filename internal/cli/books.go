package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/utils"
)

func newBooksCommand(cfg func() *config.Config) *cobra.Command {
	var (
		username string
		since    string
	)

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books with their reading time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var window time.Duration
			if since != "" {
				seconds, err := utils.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				window = time.Duration(seconds) * time.Second
			}

			s, err := openStores(cfg())
			if err != nil {
				return err
			}
			defer s.Close()

			ownerID, err := s.ownerFilter(username)
			if err != nil {
				return err
			}
			list, err := s.books.ListBooks(ownerID)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if window > 0 {
				list = createdSince(list, now.Add(-window))
			}
			return printBooks(cmd, list, now)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "only list books owned by this username")
	cmd.Flags().StringVar(&since, "since", "", `only list books added within this period, e.g. "2 days, 3 hours"`)
	return cmd
}

func createdSince(list []entities.Book, cutoff time.Time) []entities.Book {
	filtered := list[:0]
	for _, book := range list {
		if !book.CreatedAt.Before(cutoff) {
			filtered = append(filtered, book)
		}
	}
	return filtered
}

func printBooks(cmd *cobra.Command, list []entities.Book, now time.Time) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tOWNER\tREADING TIME")
	for _, book := range list {
		owner := "-"
		if book.User != nil {
			owner = book.User.Username
		}
		elapsed := utils.FormatDuration(book.ElapsedSeconds(now))
		if elapsed == "" {
			elapsed = "not started"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", book.ID, book.Title, book.Author, owner, elapsed)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d book(s)\n", len(list))
	return nil
}
