package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// fieldSpec describes one text input of a [form].
type fieldSpec struct {
	label       string
	placeholder string
	value       string
	secret      bool
}

// form is a vertical stack of text inputs with one focused at a time.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	keys   keyMap
}

func newForm(keys keyMap, specs ...fieldSpec) form {
	f := form{keys: keys}
	for i, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.SetValue(s.value)
		in.CharLimit = 255
		in.Width = 40
		if s.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		if i == 0 {
			in.Focus()
		}
		f.labels = append(f.labels, s.label)
		f.inputs = append(f.inputs, in)
	}
	return f
}

// Update moves focus on tab/shift+tab and forwards everything else to the focused input.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.next):
			f.setFocus(f.focus + 1)
			return nil
		case key.Matches(km, f.keys.prev):
			f.setFocus(f.focus - 1)
			return nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) setFocus(i int) {
	n := len(f.inputs)
	i = ((i % n) + n) % n
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// Last reports whether the last input is focused.
func (f *form) Last() bool {
	return f.focus == len(f.inputs)-1
}

// Value returns the trimmed value of input i.
func (f *form) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

// Set replaces the value of input i.
func (f *form) Set(i int, v string) {
	if i >= 0 && i < len(f.inputs) {
		f.inputs[i].SetValue(v)
	}
}

func (f *form) View() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := styles.label.Render(f.labels[i])
		if i == f.focus {
			label = styles.active.Render(f.labels[i])
		}
		b.WriteString(label + "\n" + in.View() + "\n\n")
	}
	return b.String()
}
