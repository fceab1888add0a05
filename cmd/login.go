package cmd

import (
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist a new session token",
		Long: "Sign in and persist a new session token. By default, any existing token will not " +
			"be checked and will be overwritten by the new one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return err
			}
			passwordStdin, err := cmd.Flags().GetBool("password-stdin")
			if err != nil {
				return err
			}
			reuseSession, err := cmd.Flags().GetBool("reuse-session")
			if err != nil {
				return err
			}

			m, done, err := newManager()
			if err != nil {
				return err
			}
			defer done()

			if reuseSession {
				if m.CheckAuthStatus(cmd.Context()) {
					console.Printv("Session verified successfully.")
					printUser(m.CurrentUser())
					return nil
				}
				console.Print("Your session has expired. You will need to sign in again to proceed.")
			} else {
				console.Printv("Forcing signin, as requested.")
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), passwordStdin)
			if err := signin(cmd.Context(), m, p, email); err != nil {
				return err
			}
			console.Print("Signed in.")
			printUser(m.CurrentUser())
			return nil
		},
	}

	cmd.Flags().String("email", "", "email to sign in with (prompted if empty)")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().Bool("reuse-session", false, "Do not sign in again if the stored token is still valid")

	return cmd
}
