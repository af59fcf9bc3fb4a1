package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/readinglog/internal/config"
)

func newUsersCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users and how many books each has",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStores(cfg())
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := s.users.ListUsers()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tBOOKS")
			for _, user := range list {
				count, err := s.books.CountBooks(user.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\t%d\n", user.ID, user.Username, count)
			}
			return w.Flush()
		},
	}
}
