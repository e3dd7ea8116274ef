package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// TicketsBuy buys one ticket of a category for a concert.
func (r *Runner) TicketsBuy(ctx context.Context, cmd *cli.Command) error {
	req := models.CreateTicketRequest{
		ConcertID:        cmd.Int64("concert"),
		TicketCategoryID: cmd.Int64("category"),
	}
	if req.ConcertID <= 0 || req.TicketCategoryID <= 0 {
		return fmt.Errorf("%w: --concert and --category are required", shared.ErrMissingArgument)
	}

	ticket, err := r.api.Tickets.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to buy ticket: %s", services.Describe(err, "unknown error"))
	}

	r.writePlain("✓ Ticket #%d purchased", ticket.ID)
	if ticket.Number > 0 {
		r.writePlain(" (No. %d)", ticket.Number)
	}
	return r.writePlain("\n")
}

// TicketsRelease returns a ticket.
func (r *Runner) TicketsRelease(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := r.api.Tickets.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to release ticket: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Ticket #%d released\n", id)
}

// TicketsMine lists the signed-in user's tickets.
func (r *Runner) TicketsMine(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.currentUserID()
	if err != nil {
		return err
	}

	tickets, err := r.api.Users.Tickets(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load tickets: %s", services.Describe(err, "unknown error"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(tickets, true)
	}

	r.writePlainHeader("My tickets")
	if len(tickets) == 0 {
		return r.writePlain("No tickets yet.\n")
	}
	for _, t := range tickets {
		concert, when, category := "—", "—", "—"
		if t.Concert != nil {
			concert = t.Concert.Title()
			when = formatter.FormatDateTime(t.Concert.StartAt)
		}
		if t.Category != nil {
			category = formatter.CategoryLabel(*t.Category)
		}
		r.writePlain("#%-5d %-40s %s  %s\n", t.ID, concert, when, category)
	}
	return r.writePlain("\n%s tickets\n", formatter.Count(len(tickets)))
}

// TicketsCategories lists the ticket categories the signed-in user holds tickets in.
func (r *Runner) TicketsCategories(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.currentUserID()
	if err != nil {
		return err
	}

	categories, err := r.api.Users.TicketCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %s", services.Describe(err, "unknown error"))
	}
	return r.printCategories("My ticket categories", categories)
}

func (r *Runner) printCategories(title string, categories []models.TicketCategory) error {
	r.writePlainHeader(title)
	if len(categories) == 0 {
		return r.writePlain("No categories.\n")
	}
	for _, c := range categories {
		r.writePlain("[%d] %s\n", c.ID, formatter.CategoryLabel(c))
		if c.Description != "" {
			r.writePlain("    %s\n", c.Description)
		}
	}
	return nil
}
