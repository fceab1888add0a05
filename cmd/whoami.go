package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New(`not signed in; run "datisession login" to sign in`)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print out information about the currently-authenticated user",
		Long: "Print out information about the currently-authenticated user. " +
			"The stored session token is verified against the auth API first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, done, err := openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			user := m.CurrentUser()
			if user == nil {
				return errNotSignedIn
			}
			printUser(user)
			return nil
		},
	}
}
