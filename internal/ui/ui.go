package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/store"
)

// DraftSaver keeps concert submissions that could not reach the API.
type DraftSaver interface {
	Create(draft *models.ConcertDraft) error
}

// Deps are the collaborators every page may use.
type Deps struct {
	Session  *store.Session
	Concerts *store.Concerts
	API      *services.Services
	Router   *routes.Router
	Drafts   DraftSaver // optional
	Host     string     // API host used to resolve avatar paths
	PerPage  int
	Logger   *log.Logger
}

// env is shared by the app and its pages.
type env struct {
	Deps
	ctx    context.Context
	keys   keyMap
	help   help.Model
	width  int
	height int
	nextID int
}

func (e *env) listSize() (int, int) {
	w, h := e.width-4, e.height-10
	if w < 20 {
		w = 80
	}
	if h < 5 {
		h = 20
	}
	return w, h
}

func (e *env) newID() int {
	e.nextID++
	return e.nextID
}

func (e *env) newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.warn
	return s
}

// page is one screen of the application, built by the router for a resolved path.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View() string
	Title() string
	Help() []key.Binding
}

// typist is implemented by pages that are currently capturing text, so single-letter shortcuts reach the input.
type typist interface {
	Typing() bool
}

// Model represents the TUI application state.
type Model struct {
	env     *env
	current page
	pageID  int
	path    string
	status  string
	notice  string // shown on the next page opened
}

// NewModel creates a new TUI model that opens start (e.g. "/main") once initialized.
func NewModel(ctx context.Context, deps Deps, start string) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(io.Discard)
	}
	if start == "" {
		start = routes.Main
	}

	e := &env{Deps: deps, ctx: ctx, keys: newKeyMap(), help: help.New()}
	return &Model{env: e, path: start}
}

// Init resolves the start path.
func (m *Model) Init() tea.Cmd {
	m.env.Session.CheckAuth()
	return navigate(m.path)
}

// Path returns the path of the page on screen.
func (m *Model) Path() string { return m.path }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.env.width = msg.Width
		m.env.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if t, ok := m.current.(typist); !ok || !t.Typing() {
			switch {
			case key.Matches(msg, m.env.keys.quit):
				return m, tea.Quit
			case key.Matches(msg, m.env.keys.home):
				return m, navigate(routes.Main)
			}
		}

	case Msg:
		if msg.kind == MsgNavigate {
			return m, m.open(msg.data.(string))
		}
		if msg.to != 0 && msg.to != m.pageID {
			m.env.Logger.Debug("dropping stale result", "kind", msg.kind, "to", msg.to, "current", m.pageID)
			return m, nil
		}
		if msg.kind != MsgAuthDone && services.IsUnauthorized(msg.err) {
			m.env.Session.Expire()
			m.notice = "Your session has expired. Please sign in again."
			return m, navigate(routes.Login)
		}
	}

	if m.current == nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

// open resolves path through the router guards and swaps in the matching page.
func (m *Model) open(path string) tea.Cmd {
	req, err := m.env.Router.Resolve(path)
	if err != nil {
		m.env.Logger.Error("navigation failed", "path", path, "error", err)
		m.status = err.Error()
		return nil
	}

	m.status, m.notice = m.notice, ""
	if req.Redirected() {
		m.env.Logger.Debug("redirected", "from", req.From, "to", req.Path)
		if m.status == "" && req.Path == routes.Login {
			m.status = "Please sign in to continue."
		}
	}

	p := m.build(req)
	m.current = p
	m.path = req.Path
	m.pageID = m.env.nextID
	return p.Init()
}

func (m *Model) build(req *routes.Request) page {
	e := m.env
	switch req.Pattern {
	case routes.Login:
		return newLoginPage(e)
	case routes.Register:
		return newRegisterPage(e)
	case routes.Profile:
		return newProfilePage(e)
	case routes.ConcertList:
		return newConcertListPage(e)
	case routes.ConcertCreate:
		return newConcertCreatePage(e)
	case routes.ConcertDetail:
		id, err := strconv.ParseInt(req.Param("id"), 10, 64)
		if err != nil {
			m.status = fmt.Sprintf("invalid concert id %q", req.Param("id"))
			return newHomePage(e)
		}
		return newConcertDetailPage(e, id)
	case routes.ModerationConcerts:
		return newModerationConcertsPage(e)
	case routes.ModerationUsers:
		return newModerationUsersPage(e)
	default:
		return newHomePage(e)
	}
}

// View renders the header, the current page and contextual help.
func (m *Model) View() string {
	if m.current == nil {
		return ""
	}

	var b strings.Builder

	who := "guest"
	if u := m.env.Session.User(); u != nil {
		who = u.Name
		if u.Admin() {
			who += " (admin)"
		}
	}
	b.WriteString(styles.header.Render(fmt.Sprintf("encore · %s · %s", m.current.Title(), who)))
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(styles.warn.Render(m.status) + "\n\n")
	}

	b.WriteString(m.current.View())
	b.WriteString("\n")

	keys := append(m.current.Help(), m.env.keys.home, m.env.keys.quit)
	b.WriteString(m.env.help.ShortHelpView(keys))
	return b.String()
}

// errorLine renders err for a page body, or "" when nil.
func errorLine(msg string) string {
	if msg == "" {
		return ""
	}
	return styles.err.Render("Error: "+msg) + "\n\n"
}

// pager renders "Page x of y (n total)".
func pager(meta models.PaginationMeta) string {
	return styles.help.Render(fmt.Sprintf("Page %d of %d (%d total)", meta.CurrentPage, max(meta.LastPage, 1), meta.Total))
}
