package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/howeyc/gopass"

	"github.com/daticahealth/datisession/auth"
	"github.com/daticahealth/datisession/session"
)

// maxSigninAttempts bounds how often an interactive user may retype a rejected password.
const maxSigninAttempts = 3

// readPassword reads a password without echo. Tests replace it.
var readPassword = gopass.GetPasswd

type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// passwordFromInput reads the password as a plain line, for --password-stdin.
	passwordFromInput bool
}

func newPrompter(in io.Reader, out io.Writer, passwordFromInput bool) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, passwordFromInput: passwordFromInput}
}

func (p *prompter) prompt(label string, echo bool) (string, error) {
	if echo || p.passwordFromInput {
		if echo {
			fmt.Fprint(p.out, label+": ")
		}
		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(p.out, label+": ")
	passBytes, err := readPassword()
	return string(passBytes), err
}

// valueOrPrompt returns value if set, otherwise asks for it.
func (p *prompter) valueOrPrompt(value, label string, echo bool) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.prompt(label, echo)
}

// isRejectedCredentials reports whether err is the server refusing the
// credentials, as opposed to a transport or storage failure.
func isRejectedCredentials(err error) bool {
	var ae *auth.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusBadRequest
}

// signin prompts for credentials until the server accepts them. When email
// was given on the command line the first rejection is final.
func signin(ctx context.Context, m *session.Manager, p *prompter, email string) error {
	interactive := email == ""
	for attempt := 1; ; attempt++ {
		e, err := p.valueOrPrompt(email, "Email", true)
		if err != nil {
			return err
		}
		password, err := p.prompt("Password", false)
		if err != nil {
			return err
		}
		_, err = m.Login(ctx, e, password)
		if err == nil {
			return nil
		}
		if !interactive || !isRejectedCredentials(err) || attempt >= maxSigninAttempts {
			return errors.New(session.Message(err))
		}
		console.Print(session.Message(err))
	}
}

func printUser(u *auth.User) {
	console.Print("ID:    %s", u.ID)
	if u.Name != "" {
		console.Print("Name:  %s", u.Name)
	}
	console.Print("Email: %s", u.Email)
}
