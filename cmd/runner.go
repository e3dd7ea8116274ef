package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/store"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// DraftStore persists concert submissions that could not reach the API.
type DraftStore interface {
	tasks.DraftStore
	Create(draft *models.ConcertDraft) error
	Get(id string) (*models.ConcertDraft, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	storage    store.Storage
	drafts     DraftStore
	client     *services.Client
	api        *services.Services
	session    *store.Session
	concerts   *store.Concerts
	router     *routes.Router
	engine     *tasks.ConcertEngine
	transport  http.RoundTripper
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    store.Storage // defaults to in-memory storage
	Drafts     DraftStore    // optional
	Transport  http.RoundTripper
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner wires the API client, stores, router and engine around the persisted storage.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Storage == nil {
		opts.Storage = store.NewMemoryStorage()
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		drafts:     opts.Drafts,
		transport:  opts.Transport,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}

	r.client = services.NewClient(services.ClientOpts{
		BaseURL:   opts.Config.API.BaseURL,
		Timeout:   opts.Config.API.Timeout(),
		Token:     func() string { return r.session.BearerToken() },
		Logger:    shared.WithLogger(opts.Logger, "component", "api"),
		Transport: opts.Transport,
	})
	r.api = services.New(r.client)
	r.session = store.NewSession(r.api.Auth, opts.Storage, opts.Logger)
	r.client.SetUnauthorizedHandler(r.session.Expire)
	r.concerts = store.NewConcerts(r.api.Concerts, opts.Storage, opts.Config.Concerts.PerPage, opts.Logger)

	r.router = routes.New(r.session, opts.Logger)
	r.router.Standard(nil)
	r.router.Use(routes.Logging(opts.Logger))

	var drafts tasks.DraftStore
	if opts.Drafts != nil {
		drafts = opts.Drafts
	}
	r.engine = tasks.NewConcertEngine(r.api.Concerts, drafts, shared.WithLogger(opts.Logger, "component", "engine"))

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, concertsCommand, ticketsCommand, profileCommand,
		usersCommand, categoriesCommand, commentsCommand, moderationCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// guard runs action only when the session may open path, mirroring the screen guards of the TUI.
//
// A redirect to the login page becomes [shared.ErrNotAuthenticated]; an admin-only page is [shared.ErrForbidden].
func (r *Runner) guard(path string, action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		req, err := r.router.Resolve(path)
		if err != nil {
			return err
		}
		if req.Redirected() {
			switch {
			case req.Path == routes.Login:
				return fmt.Errorf("%w: run 'encore auth login' first", shared.ErrNotAuthenticated)
			case req.From == routes.Register:
				return fmt.Errorf("%w: already signed in, run 'encore auth logout' first", shared.ErrInvalidArgument)
			}
			return shared.ErrForbidden
		}

		return r.router.Apply(func(ctx context.Context, _ *routes.Request) error {
			return action(ctx, cmd)
		})(ctx, req)
	}
}

// idArg parses the positional argument name as a resource id.
func idArg(cmd *cli.Command, name string) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// currentUserID returns the signed-in user's id.
func (r *Runner) currentUserID() (int64, error) {
	id, ok := r.session.UserID()
	if !ok {
		return 0, fmt.Errorf("%w: no user in session", shared.ErrNotAuthenticated)
	}
	return id, nil
}

// readPassword prompts for a secret without echo when stdin is a terminal, and reads a plain line otherwise.
func (r *Runner) readPassword(prompt string) (string, error) {
	r.writePlain("%s", prompt)

	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// watchProgress prints engine updates until the returned stop function is called.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPage:
				r.writePlain("📥 %s\n", update.Message)
			default:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
}
