package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with email and password and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := strings.TrimSpace(cmd.String("email"))
	if email == "" {
		return fmt.Errorf("%w: --email is required", shared.ErrMissingArgument)
	}

	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.readPassword("Password: "); err != nil {
			return err
		}
	}

	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email)
	if err := r.session.Login(ctx, creds); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.session.State().Error)
	}

	user := r.session.User()
	if user == nil {
		return r.writePlain("✓ Signed in\n")
	}
	return r.writePlain("✓ Signed in as %s <%s> (%s)\n", user.Name, user.Email, formatter.Admin(user))
}

// AuthRegister creates an account, signs in with the returned token and persists the session.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.readPassword("Password: "); err != nil {
			return err
		}
	}

	confirmation := cmd.String("password-confirmation")
	if confirmation == "" {
		var err error
		if confirmation, err = r.readPassword("Confirm password: "); err != nil {
			return err
		}
	}

	req := models.RegisterRequest{
		Name:                 cmd.String("name"),
		Email:                cmd.String("email"),
		Password:             password,
		PasswordConfirmation: confirmation,
		Description:          cmd.String("description"),
		AvatarPath:           cmd.String("avatar"),
	}

	r.logger.Info("registering account", "email", req.Email)
	if err := r.session.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %s", r.session.State().Error)
	}

	user := r.session.User()
	if user == nil {
		return r.writePlain("✓ Account created\n")
	}
	return r.writePlain("✓ Account created for %s <%s>\n", user.Name, user.Email)
}

// AuthLogout revokes the token and clears the local session. Local state is cleared even if the API call fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.CheckAuth() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.session.Logout(ctx); err != nil {
		r.logger.Warn("remote logout failed, local session cleared", "error", err)
		return r.writePlain("✓ Signed out locally (server said: %v)\n", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the persisted session: who is signed in, their role and when the token expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	authenticated := r.session.CheckAuth()
	user := r.session.User()

	if cmd.Bool("json") {
		status := struct {
			Authenticated bool         `json:"authenticated"`
			Admin         bool         `json:"admin"`
			User          *models.User `json:"user,omitempty"`
			ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
		}{Authenticated: authenticated, Admin: r.session.IsAdmin(), User: user}
		if exp, ok := shared.TokenExpiry(r.session.BearerToken()); ok {
			status.ExpiresAt = &exp
		}
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Session")
	if !authenticated {
		r.writePlain("Authentication: ✗ Not signed in\n")
		return r.writePlain("Run 'encore auth login --email you@example.com' to sign in\n")
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	if user != nil {
		r.writePlain("User: %s <%s>\n", user.Name, user.Email)
		r.writePlain("Role: %s\n", formatter.Admin(user))
	}
	if exp, ok := shared.TokenExpiry(r.session.BearerToken()); ok {
		r.writePlain("Token expires: %s (%s)\n", exp.Local().Format(time.DateTime), humanize.Time(exp))
	}

	var reachable []string
	for _, page := range routes.Pages {
		if r.router.Allowed(page.Pattern) {
			reachable = append(reachable, page.Pattern)
		}
	}
	return r.writePlain("Screens: %s\n", strings.Join(reachable, ", "))
}
