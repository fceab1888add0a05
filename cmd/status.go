package cmd

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the session status",
		Long:  "Verify the stored session token and print checking, authenticated or not-authenticated.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, done, err := openManager(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			console.Print(m.Status().String())
			return nil
		},
	}
}
