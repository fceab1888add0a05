package cmd

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, done, err := newManager()
			if err != nil {
				return err
			}
			defer done()

			if err := m.Logout(cmd.Context()); err != nil {
				return err
			}
			console.Print("Signed out.")
			return nil
		},
	}
}
