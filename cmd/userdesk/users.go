package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/open-sspm/userdesk/internal/config"
	"github.com/open-sspm/userdesk/internal/directory"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect the user directory.",
}

var usersListPage int

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if usersListPage < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", usersListPage)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cliRequestTimeout)
		defer cancel()

		client, err := newDirectoryClient(ctx, cfg)
		if err != nil {
			return err
		}
		page, err := client.ListUsers(ctx, usersListPage)
		if err != nil {
			return directoryExitError(err)
		}
		return writeUsersTable(cmd.OutOrStdout(), page)
	},
}

func init() {
	usersListCmd.Flags().IntVar(&usersListPage, "page", 1, "page number (1-based)")
	usersCmd.AddCommand(usersListCmd)
}

func writeUsersTable(w io.Writer, page directory.Page) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	for _, u := range page.Users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.FullName(), u.Email)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing page %d of %d\n", page.Number, page.TotalPages)
	return err
}
