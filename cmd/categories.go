package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/urfave/cli/v3"
)

// CategoriesList prints every ticket category.
func (r *Runner) CategoriesList(ctx context.Context, cmd *cli.Command) error {
	categories, err := r.api.Categories.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %s", services.Describe(err, "unknown error"))
	}
	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}
	return r.printCategories("Ticket categories", categories)
}

func categoryRequest(cmd *cli.Command) models.CategoryRequest {
	req := models.CategoryRequest{
		Name:        strings.TrimSpace(cmd.String("name")),
		Description: cmd.String("description"),
	}
	if cmd.IsSet("price") {
		price := cmd.Float64("price")
		req.Price = &price
	}
	return req
}

// CategoriesCreate adds a ticket category.
func (r *Runner) CategoriesCreate(ctx context.Context, cmd *cli.Command) error {
	req := categoryRequest(cmd)
	if err := req.Validate(); err != nil {
		return err
	}

	category, err := r.api.Categories.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create category: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Category #%d created: %s\n", category.ID, category.Name)
}

// CategoriesUpdate replaces a ticket category's fields.
func (r *Runner) CategoriesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	req := categoryRequest(cmd)
	if err := req.Validate(); err != nil {
		return err
	}

	category, err := r.api.Categories.Update(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update category: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Category #%d updated: %s\n", category.ID, category.Name)
}

// CategoriesDelete removes a ticket category.
func (r *Runner) CategoriesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := r.api.Categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Category #%d deleted\n", id)
}
