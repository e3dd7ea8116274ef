// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/encore/internal/routes"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Page number", Value: 1}
}

// setupCommand handles setup operations for the config file and local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "database",
						Usage: "Override the database path from the config",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, register and manage the session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)"},
				},
				Action: r.guard(routes.Login, r.AuthLogin),
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password (prompted when omitted)"},
					&cli.StringFlag{Name: "password-confirmation", Usage: "Password again (prompted when omitted)"},
					&cli.StringFlag{Name: "description", Usage: "About you"},
					&cli.StringFlag{Name: "avatar", Usage: "Path to an avatar image"},
				},
				Action: r.guard(routes.Register, r.AuthRegister),
			},
			{
				Name:   "logout",
				Usage:  "Revoke the token and clear the local session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// concertsCommand handles concert listings and drafts
func concertsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "concerts",
		Aliases: []string{"concert", "c"},
		Usage:   "Browse, create and manage concerts",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List accepted concerts",
				Flags: []cli.Flag{
					pageFlag(),
					jsonFlag(),
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
				},
				Action: r.guard(routes.ConcertList, r.ConcertsAccepted),
			},
			{
				Name:  "all",
				Usage: "List every concert, pending ones included (admin)",
				Flags: []cli.Flag{
					pageFlag(),
					jsonFlag(),
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
					&cli.BoolFlag{Name: "pending", Usage: "Only concerts awaiting moderation"},
				},
				Action: r.guard(routes.ModerationConcerts, r.ConcertsAll),
			},
			{
				Name:      "show",
				Usage:     "Show a concert with its categories, tickets and comments",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.guard(routes.Build(routes.ConcertDetail, "id", "0"), r.ConcertsShow),
			},
			{
				Name:  "create",
				Usage: "Submit a concert for moderation",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "city", Usage: "City", Required: true},
					&cli.StringFlag{Name: "place", Usage: "Venue", Required: true},
					&cli.StringFlag{Name: "start", Usage: "Start time, e.g. \"2026-11-01 20:00\"", Required: true},
					&cli.StringSliceFlag{Name: "category", Usage: "Ticket category as <id> or <id>=<price> (repeatable)"},
					&cli.StringSliceFlag{Name: "attachment", Usage: "File to attach (repeatable)"},
				},
				Action: r.guard(routes.ConcertCreate, r.ConcertsCreate),
			},
			{
				Name:      "update",
				Usage:     "Edit a concert",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "city", Usage: "City"},
					&cli.StringFlag{Name: "place", Usage: "Venue"},
					&cli.StringFlag{Name: "start", Usage: "Start time"},
				},
				Action: r.guard(routes.Build(routes.ConcertDetail, "id", "0"), r.ConcertsUpdate),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a concert",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(routes.Profile, r.ConcertsDelete),
			},
			{
				Name:      "accept",
				Usage:     "Accept a pending concert (admin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(routes.ModerationConcerts, r.ConcertsAccept),
			},
			{
				Name:      "open",
				Usage:     "Open the concert in the web client",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "print", Usage: "Print the URL instead of opening it"},
				},
				Action: r.ConcertsOpen,
			},
			{
				Name:  "export",
				Usage: "Export concerts as json, yaml, csv, md or txt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: concerts.<format>)"},
					&cli.BoolFlag{Name: "stdout", Usage: "Write to stdout instead of a file"},
					&cli.BoolFlag{Name: "accepted", Usage: "Only accepted concerts"},
					&cli.BoolFlag{Name: "mine", Usage: "Only concerts you created"},
					&cli.IntFlag{Name: "max-pages", Usage: "Stop after this many pages (0 means all)"},
				},
				Action: r.guard(routes.ConcertList, r.ConcertsExport),
			},
			draftsCommand(r),
		},
	}
}

// draftsCommand handles concert submissions saved while offline
func draftsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "drafts",
		Usage: "Concert submissions saved while the API was unreachable",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved drafts",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "city", Usage: "Only drafts for this city"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of drafts"},
					jsonFlag(),
				},
				Action: r.DraftsList,
			},
			{
				Name:      "retry",
				Usage:     "Submit drafts again (all unless ids are given)",
				ArgsUsage: "[draft-id...]",
				Action:    r.guard(routes.ConcertCreate, r.DraftsRetry),
			},
			{
				Name:      "discard",
				Usage:     "Delete a draft",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.DraftsDiscard,
			},
		},
	}
}

// ticketsCommand handles ticket purchase
func ticketsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tickets",
		Aliases: []string{"ticket", "t"},
		Usage:   "Buy and manage tickets",
		Commands: []*cli.Command{
			{
				Name:  "buy",
				Usage: "Buy a ticket",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "concert", Usage: "Concert id", Required: true},
					&cli.Int64Flag{Name: "category", Usage: "Ticket category id", Required: true},
				},
				Action: r.guard(routes.Build(routes.ConcertDetail, "id", "0"), r.TicketsBuy),
			},
			{
				Name:      "release",
				Usage:     "Give a ticket back",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(routes.Profile, r.TicketsRelease),
			},
			{
				Name:    "mine",
				Aliases: []string{"ls"},
				Usage:   "List your tickets",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.guard(routes.Profile, r.TicketsMine),
			},
			{
				Name:   "categories",
				Usage:  "List the categories you hold tickets in",
				Action: r.guard(routes.Profile, r.TicketsCategories),
			},
		},
	}
}

// profileCommand handles the signed-in account
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show and edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.guard(routes.Profile, r.ProfileShow),
			},
			{
				Name:  "update",
				Usage: "Change profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "email", Usage: "Account email"},
					&cli.StringFlag{Name: "description", Usage: "About you"},
					&cli.StringFlag{Name: "avatar", Usage: "Path to a new avatar image"},
					&cli.BoolFlag{Name: "remove-avatar", Usage: "Remove the current avatar"},
				},
				Action: r.guard(routes.Profile, r.ProfileUpdate),
			},
		},
	}
}

// usersCommand handles account moderation
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Moderate accounts (admin)",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List accounts",
				Flags:   []cli.Flag{pageFlag(), jsonFlag()},
				Action:  r.guard(routes.ModerationUsers, r.UsersList),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an account",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(routes.ModerationUsers, r.UsersDelete),
			},
		},
	}
}

// categoriesCommand handles ticket categories
func categoriesCommand(r *Runner) *cli.Command {
	categoryFlags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Category name", Required: required},
			&cli.StringFlag{Name: "description", Usage: "Category description"},
			&cli.Float64Flag{Name: "price", Usage: "Default price"},
		}
	}

	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"category"},
		Usage:   "Manage ticket categories",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List ticket categories",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.guard(routes.ConcertCreate, r.CategoriesList),
			},
			{
				Name:   "create",
				Usage:  "Add a ticket category (admin)",
				Flags:  categoryFlags(true),
				Action: r.guard(routes.ModerationConcerts, r.CategoriesCreate),
			},
			{
				Name:      "update",
				Usage:     "Edit a ticket category (admin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     categoryFlags(true),
				Action:    r.guard(routes.ModerationConcerts, r.CategoriesUpdate),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a ticket category (admin)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(routes.ModerationConcerts, r.CategoriesDelete),
			},
		},
	}
}

// commentsCommand handles concert comments
func commentsCommand(r *Runner) *cli.Command {
	contentFlag := &cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Comment text", Required: true}
	detail := routes.Build(routes.ConcertDetail, "id", "0")

	return &cli.Command{
		Name:  "comments",
		Usage: "Read and write concert comments",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List comments on a concert",
				Arguments: []cli.Argument{&cli.StringArg{Name: "concert"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.guard(detail, r.CommentsList),
			},
			{
				Name:      "add",
				Usage:     "Comment on a concert",
				Arguments: []cli.Argument{&cli.StringArg{Name: "concert"}},
				Flags:     []cli.Flag{contentFlag},
				Action:    r.guard(detail, r.CommentsAdd),
			},
			{
				Name:      "edit",
				Usage:     "Edit a comment",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{contentFlag},
				Action:    r.guard(detail, r.CommentsEdit),
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a comment",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guard(detail, r.CommentsDelete),
			},
		},
	}
}

// moderationCommand handles bulk moderation runs
func moderationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "moderation",
		Aliases: []string{"mod"},
		Usage:   "Bulk concert moderation (admin)",
		Commands: []*cli.Command{
			{
				Name:      "bulk",
				Usage:     "Accept or delete many concerts at once",
				ArgsUsage: "[concert-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Usage: "accept or delete", Value: "accept"},
					&cli.BoolFlag{Name: "pending", Usage: "Moderate every concert awaiting moderation"},
					&cli.IntFlag{Name: "max-pages", Usage: "Pages to scan with --pending (0 means all)"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers (default from config)"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the concerts that would be moderated"},
				},
				Action: r.guard(routes.ModerationConcerts, r.ModerationBulk),
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls with the session token",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "Screen to open first", Value: routes.Main},
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI runs", Value: "./tmp/encore-tui.log"},
		},
		Action: r.TUI,
	}
}
