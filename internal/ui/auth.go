package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
)

var registerKey = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "create account"))

// loginPage signs in with email and password.
type loginPage struct {
	env     *env
	id      int
	form    form
	spinner spinner.Model
	busy    bool
	err     string
}

func newLoginPage(e *env) *loginPage {
	return &loginPage{
		env: e,
		id:  e.newID(),
		form: newForm(e.keys,
			fieldSpec{label: "Email", placeholder: "you@example.com"},
			fieldSpec{label: "Password", secret: true},
		),
		spinner: e.newSpinner(),
	}
}

func (p *loginPage) Title() string { return "Sign in" }
func (p *loginPage) Typing() bool  { return true }
func (p *loginPage) Init() tea.Cmd { return nil }

func (p *loginPage) Help() []key.Binding {
	return []key.Binding{p.env.keys.next, p.env.keys.enter, registerKey}
}

func (p *loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch {
		case key.Matches(msg, registerKey):
			return p, navigate(routes.Register)
		case key.Matches(msg, p.env.keys.enter):
			if !p.form.Last() {
				p.form.setFocus(p.form.focus + 1)
				return p, nil
			}
			return p, p.submit()
		}
		return p, p.form.Update(msg)

	case spinner.TickMsg:
		if !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case Msg:
		if msg.kind == MsgAuthDone {
			p.busy = false
			if msg.err != nil {
				p.err = p.env.Session.State().Error
				if p.err == "" {
					p.err = msg.err.Error()
				}
				return p, nil
			}
			return p, navigate(routes.Main)
		}
	}
	return p, nil
}

func (p *loginPage) submit() tea.Cmd {
	creds := models.Credentials{Email: p.form.Value(0), Password: p.form.inputs[1].Value()}
	if err := creds.Validate(); err != nil {
		p.err = err.Error()
		return nil
	}

	p.busy = true
	p.err = ""
	id, e := p.id, p.env
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		err := e.Session.Login(e.ctx, creds)
		return resultMsg(id, MsgAuthDone, nil, err)
	})
}

func (p *loginPage) View() string {
	out := styles.title.Render("Sign in to your account") + "\n"
	out += errorLine(p.err)
	out += p.form.View()
	if p.busy {
		out += p.spinner.View() + " Signing in...\n"
	}
	return out
}

// registerPage creates an account and signs in.
type registerPage struct {
	env     *env
	id      int
	form    form
	spinner spinner.Model
	busy    bool
	err     string
}

const (
	regName = iota
	regEmail
	regPassword
	regConfirm
	regDescription
	regAvatar
)

func newRegisterPage(e *env) *registerPage {
	return &registerPage{
		env: e,
		id:  e.newID(),
		form: newForm(e.keys,
			fieldSpec{label: "Name", placeholder: "At least 2 characters"},
			fieldSpec{label: "Email", placeholder: "you@example.com"},
			fieldSpec{label: "Password", placeholder: "At least 6 characters", secret: true},
			fieldSpec{label: "Confirm password", secret: true},
			fieldSpec{label: "About you (optional)"},
			fieldSpec{label: "Avatar file (optional)", placeholder: "/path/to/avatar.png"},
		),
		spinner: e.newSpinner(),
	}
}

func (p *registerPage) Title() string { return "Create account" }
func (p *registerPage) Typing() bool  { return true }
func (p *registerPage) Init() tea.Cmd { return nil }

func (p *registerPage) Help() []key.Binding {
	return []key.Binding{p.env.keys.next, p.env.keys.submit, p.env.keys.back}
}

func (p *registerPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch {
		case key.Matches(msg, p.env.keys.back):
			return p, navigate(routes.Login)
		case key.Matches(msg, p.env.keys.submit):
			return p, p.submit()
		case key.Matches(msg, p.env.keys.enter):
			if p.form.Last() {
				return p, p.submit()
			}
			p.form.setFocus(p.form.focus + 1)
			return p, nil
		}
		return p, p.form.Update(msg)

	case spinner.TickMsg:
		if !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case Msg:
		if msg.kind == MsgAuthDone {
			p.busy = false
			if msg.err != nil {
				p.err = p.env.Session.State().Error
				return p, nil
			}
			return p, navigate(routes.Main)
		}
	}
	return p, nil
}

func (p *registerPage) request() models.RegisterRequest {
	return models.RegisterRequest{
		Name:                 p.form.Value(regName),
		Email:                p.form.Value(regEmail),
		Password:             p.form.inputs[regPassword].Value(),
		PasswordConfirmation: p.form.inputs[regConfirm].Value(),
		Description:          p.form.Value(regDescription),
		AvatarPath:           p.form.Value(regAvatar),
	}
}

func (p *registerPage) submit() tea.Cmd {
	req := p.request()
	if err := req.Validate(); err != nil {
		p.err = err.Error()
		return nil
	}

	p.busy = true
	p.err = ""
	id, e := p.id, p.env
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		err := e.Session.Register(e.ctx, req)
		return resultMsg(id, MsgAuthDone, nil, err)
	})
}

func (p *registerPage) View() string {
	out := styles.title.Render("Create an account") + "\n"
	out += errorLine(p.err)
	out += p.form.View()
	if p.busy {
		out += p.spinner.View() + " Creating account...\n"
	}
	return out
}
