package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskforge/internal/authrpc"
	"github.com/dmitrijs2005/taskforge/internal/client/client"
	"github.com/dmitrijs2005/taskforge/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer

	// email remembers the last address typed so follow-up prompts can
	// default to it.
	email string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewTaskForgeClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to TaskForge CLI (type 'help' for commands)")
	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server %s is not reachable: %v\n", a.config.ServerEndpointAddr, err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.SignedIn()
}

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.email != "" {
		return fmt.Sprintf("(%s)", a.email)
	}
	return ""
}

// askEmail prompts for an address, offering the remembered one as default.
func (a *App) askEmail() (string, error) {
	prompt := "Enter email"
	if a.email != "" {
		prompt = fmt.Sprintf("Enter email [%s]", a.email)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if email == "" {
		email = a.email
	}
	a.email = email
	return email, nil
}

// report prints err in a form suitable for the terminal and returns it.
func (a *App) report(err error) error {
	var (
		locked     *client.LockedError
		unverified *client.UnverifiedError
	)
	switch {
	case errors.As(err, &locked):
		fmt.Fprintf(a.out, "%s\nTry again after %s.\n", locked.Message, locked.BlockedUntil.Local().Format("15:04:05"))
	case errors.As(err, &unverified):
		a.email = unverified.Email
		fmt.Fprintln(a.out, "Your account is not verified yet. Use 'resend-verification' to get a new code, then 'verify'.")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, please try again later.")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

func (a *App) printAccount(acc *authrpc.Account) {
	if acc == nil {
		return
	}
	fmt.Fprintf(a.out, "  id:       %s\n", acc.ID)
	fmt.Fprintf(a.out, "  name:     %s\n", acc.Name)
	fmt.Fprintf(a.out, "  email:    %s\n", acc.Email)
	fmt.Fprintf(a.out, "  role:     %s\n", acc.Role)
	fmt.Fprintf(a.out, "  verified: %t\n", acc.IsVerified)
	if acc.ProfileImageURL != "" {
		fmt.Fprintf(a.out, "  image:    %s\n", acc.ProfileImageURL)
	}
}
