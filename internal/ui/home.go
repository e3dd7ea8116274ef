package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/routes"
)

const logoutPath = "logout"

// homePage is the landing menu. Entries the session may not open are hidden.
type homePage struct {
	env  *env
	id   int
	list list.Model
}

func newHomePage(e *env) *homePage {
	p := &homePage{env: e, id: e.newID()}
	p.list = newList(p.items(), "Where to?", e)
	return p
}

func (p *homePage) items() []list.Item {
	entries := []menuItem{
		{"Concerts", "Browse accepted concerts", routes.ConcertList},
		{"Create concert", "Submit a new concert for moderation", routes.ConcertCreate},
		{"Profile", "Your details, tickets and concerts", routes.Profile},
		{"Moderate concerts", "Accept or remove submitted concerts", routes.ModerationConcerts},
		{"Moderate users", "Review and remove accounts", routes.ModerationUsers},
	}

	var items []list.Item
	for _, entry := range entries {
		if p.env.Router.Allowed(entry.path) {
			items = append(items, entry)
		}
	}

	if p.env.Session.IsAuthenticated() {
		items = append(items, menuItem{"Sign out", "End this session", logoutPath})
	} else {
		items = append(items,
			menuItem{"Sign in", "Use an existing account", routes.Login},
			menuItem{"Create account", "Register a new account", routes.Register},
		)
	}
	return items
}

func (p *homePage) Title() string { return "Home" }
func (p *homePage) Init() tea.Cmd { return nil }

func (p *homePage) Help() []key.Binding {
	return []key.Binding{p.env.keys.up, p.env.keys.down, p.env.keys.enter}
}

func (p *homePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(p.env.listSize())
		return p, nil

	case tea.KeyMsg:
		if key.Matches(msg, p.env.keys.enter) {
			item, ok := p.list.SelectedItem().(menuItem)
			if !ok {
				return p, nil
			}
			if item.path == logoutPath {
				return p, p.logout()
			}
			return p, navigate(item.path)
		}

	case Msg:
		if msg.kind == MsgLogoutDone {
			if msg.err != nil {
				p.env.Logger.Warn("remote logout failed", "error", msg.err)
			}
			return p, navigate(routes.Login)
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *homePage) logout() tea.Cmd {
	id, e := p.id, p.env
	return func() tea.Msg {
		err := e.Session.Logout(e.ctx)
		return resultMsg(id, MsgLogoutDone, nil, err)
	}
}

func (p *homePage) View() string {
	var out string
	if u := p.env.Session.User(); u != nil {
		out += styles.ok.Render("Welcome back, "+u.Name) + "\n\n"
	} else {
		out += styles.title.Render("Find your next concert") + "\n"
	}
	return out + p.list.View()
}
