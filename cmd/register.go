package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/daticahealth/datisession/session"
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: "Create an account and sign in. Name must be at least 4 characters, email a valid " +
			"lowercase address and password at least 6 characters.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cmd.Flags().GetString("name")
			if err != nil {
				return err
			}
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return err
			}
			passwordStdin, err := cmd.Flags().GetBool("password-stdin")
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), passwordStdin)
			if name, err = p.valueOrPrompt(name, "Name", true); err != nil {
				return err
			}
			if email, err = p.valueOrPrompt(email, "Email", true); err != nil {
				return err
			}
			password, err := p.prompt("Password", false)
			if err != nil {
				return err
			}
			if err := validateRegistration(name, email, password); err != nil {
				return err
			}

			m, done, err := newManager()
			if err != nil {
				return err
			}
			defer done()

			if _, err := m.Register(cmd.Context(), name, email, password); err != nil {
				return errors.New(session.Message(err))
			}
			console.Print("Registered successfully.")
			printUser(m.CurrentUser())
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name (prompted if empty)")
	cmd.Flags().String("email", "", "email (prompted if empty)")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")

	return cmd
}
