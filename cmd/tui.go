package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal client.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}

	// Rebuild the stores so every component logs to the file.
	tr := NewRunner(RunnerOpts{
		Config:    r.config,
		Storage:   r.storage,
		Drafts:    r.drafts,
		Transport: r.transport,
		Logger:    fileLogger,
		Output:    r.output,
		Input:     r.input,
	})

	deps := ui.Deps{
		Session:  tr.session,
		Concerts: tr.concerts,
		API:      tr.api,
		Router:   tr.router,
		Host:     tr.config.API.Host(),
		PerPage:  tr.config.Concerts.PerPage,
		Logger:   fileLogger,
	}
	if tr.drafts != nil {
		deps.Drafts = tr.drafts
	}

	model := ui.NewModel(ctx, deps, cmd.String("start"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
