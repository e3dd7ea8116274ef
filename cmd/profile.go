package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/urfave/cli/v3"
)

// ProfileShow fetches the signed-in user's account from the API.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.currentUserID()
	if err != nil {
		return err
	}

	user, err := r.api.Users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %s", services.Describe(err, "unknown error"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader(user.Name)
	r.writePlain("Email: %s\n", user.Email)
	r.writePlain("Role: %s\n", formatter.Admin(user))
	r.writePlain("Avatar: %s\n", formatter.AvatarURL(r.config.API.Host(), user.Avatar))
	if user.Description != "" {
		r.writePlain("About: %s\n", user.Description)
	}
	if user.CreatedAt != "" {
		r.writePlain("Member since: %s\n", formatter.FormatDay(user.CreatedAt))
	}
	return nil
}

// ProfileUpdate changes profile fields and merges the accepted values into the stored session user.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.currentUserID()
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	for flag, dst := range map[string]**string{"name": &req.Name, "email": &req.Email, "description": &req.Description} {
		if cmd.IsSet(flag) {
			v := strings.TrimSpace(cmd.String(flag))
			*dst = &v
		}
	}
	req.AvatarPath = cmd.String("avatar")
	req.RemoveAvatar = cmd.Bool("remove-avatar")

	if err := req.Validate(); err != nil {
		return err
	}

	before := r.session.User()
	updated, err := r.api.Users.Update(ctx, userID, req)
	if err != nil {
		return fmt.Errorf("failed to update profile: %s", services.Describe(err, "unknown error"))
	}

	if before != nil {
		if err := r.session.UpdateUser(models.PatchFrom(*before, *updated)); err != nil {
			r.logger.Warn("failed to store updated profile", "error", err)
		}
	}
	return r.writePlain("✓ Profile updated for %s <%s>\n", updated.Name, updated.Email)
}

// UsersList prints one page of accounts.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	page := max(int(cmd.Int("page")), 1)

	result, err := r.api.Users.List(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to list users: %s", services.Describe(err, "unknown error"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Data, true)
	}

	meta := result.Pagination(page)
	r.writePlainHeader("Users")
	for _, u := range result.Data {
		r.writePlain("#%-5d %-24s %-32s %s\n", u.ID, u.Name, u.Email, formatter.Admin(&u))
	}
	return r.writePlain("\nPage %d of %d (%s total)\n", meta.CurrentPage, max(meta.LastPage, 1), formatter.Count(meta.Total))
}

// UsersDelete removes an account. Deleting the signed-in account is refused.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if self, ok := r.session.UserID(); ok && self == id {
		return fmt.Errorf("refusing to delete the signed-in account")
	}

	if err := r.api.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ User #%d deleted\n", id)
}
