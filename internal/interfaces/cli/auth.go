package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/infrastructure/api"
)

func (a *App) runLogin(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(a.errOut, "login requires -u and -p")
		return errUsage
	}

	resp, err := a.client.Auth.Login(ctx, identity.LoginRequest{Username: *username, Password: *password})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			// a rejected login is not an expired session
			return fmt.Errorf("login failed: %v", apiErr)
		}
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", resp.Username, resp.Role)
	return nil
}

func (a *App) runLogout(ctx context.Context, args []string) error {
	if err := parse(a.flagSet("logout"), args); err != nil {
		return err
	}
	a.client.Auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) runWhoami(ctx context.Context, args []string) error {
	if err := parse(a.flagSet("whoami"), args); err != nil {
		return err
	}
	if !a.client.Session().IsAuthenticated() {
		return api.ErrUnauthorized
	}
	user, err := a.client.Auth.Me(ctx)
	if err != nil {
		return err
	}
	name := user.Username
	if display := user.DisplayName(); display != user.Username {
		name = fmt.Sprintf("%s (%s)", display, user.Username)
	}
	fmt.Fprintf(a.out, "%s\nRole:  %s\nEmail: %s\n", name, user.Role, user.Email)
	if exp := a.client.Session().ExpiresAt(); !exp.IsZero() {
		fmt.Fprintf(a.out, "Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
