package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "datisession",
		Short:         "Sign in to the auth API and manage the local session.",
		Long:          "Sign in to the auth API and manage the local session token.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}
	bindFlags(root)
	root.AddCommand(newLoginCmd(), newRegisterCmd(), newWhoamiCmd(), newStatusCmd(), newLogoutCmd())
	return root
}

// Execute invokes the command and exits in the event of an error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
