package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/auth"
	"github.com/five82/odo/internal/session"
)

// Form fields, indexes into loginForm.inputs.
const (
	fieldEmail = iota
	fieldPassword
	fieldName
	fieldCount
)

// loginForm is the sign-in / sign-up form state.
type loginForm struct {
	inputs [fieldCount]textinput.Model
	focus  int // position in order()
	signUp bool
	notice string
}

func newLoginForm() loginForm {
	var f loginForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		switch i {
		case fieldEmail:
			in.Placeholder = "you@example.com"
		case fieldPassword:
			in.Placeholder = "password"
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		case fieldName:
			in.Placeholder = "Full name"
		}
		f.inputs[i] = in
	}
	f.inputs[fieldEmail].Focus()
	return f
}

// order lists the visible fields top to bottom.
func (f loginForm) order() []int {
	if f.signUp {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (f loginForm) focused() int {
	return f.order()[f.focus]
}

func (f loginForm) onLastField() bool {
	return f.focus == len(f.order())-1
}

func (f loginForm) value(field int) string {
	return f.inputs[field].Value()
}

func (f loginForm) move(delta int) (loginForm, tea.Cmd) {
	order := f.order()
	f.inputs[order[f.focus]].Blur()
	n := len(order)
	f.focus = ((f.focus+delta)%n + n) % n
	return f, f.inputs[order[f.focus]].Focus()
}

func (f loginForm) toggleMode() (loginForm, tea.Cmd) {
	f.inputs[f.focused()].Blur()
	f.signUp = !f.signUp
	f.focus = 0
	f.notice = ""
	return f, f.inputs[f.focused()].Focus()
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	i := f.focused()
	var cmd tea.Cmd
	f.inputs[i], cmd = f.inputs[i].Update(msg)
	return f, cmd
}

// handleLoginKey drives the form. Input is ignored while an attempt is in
// flight.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sessions.State().IsLoading {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.SwitchMode):
		m.login, cmd = m.login.toggleMode()
		return m, cmd
	case key.Matches(msg, m.keys.NextField):
		m.login, cmd = m.login.move(1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevField):
		m.login, cmd = m.login.move(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		if !m.login.onLastField() {
			m.login, cmd = m.login.move(1)
			return m, cmd
		}
		return m.submitLogin()
	}

	m.login, cmd = m.login.update(msg)
	return m, cmd
}

// submitLogin starts a sign-in or sign-up attempt with a fresh ticket.
func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.login.value(fieldEmail))
	password := m.login.value(fieldPassword)
	if email == "" || password == "" {
		m.login.notice = "Please fill in all fields"
		return m, nil
	}
	m.login.notice = ""
	m.notice = ""

	svc := m.auth
	t := m.sessions.Begin()
	if m.login.signUp {
		req := api.RegisterRequest{
			FullName:    strings.TrimSpace(m.login.value(fieldName)),
			Email:       email,
			Password:    password,
			MileageType: session.MileageKilometers,
			DarkMode:    m.prefs.State().DarkMode,
		}
		return m, m.authCmd(t, actionSignUp, func(ctx context.Context) auth.Outcome {
			return svc.SignUp(ctx, req)
		})
	}
	return m, m.authCmd(t, actionSignIn, func(ctx context.Context) auth.Outcome {
		return svc.SignIn(ctx, email, password)
	})
}

// renderLogin draws the sign-in form.
func (m Model) renderLogin() string {
	styles := m.frame.theme().Styles()
	st := m.sessions.State()

	title := "Sign in to your garage"
	switchHint := "ctrl+n: create an account"
	if m.login.signUp {
		title = "Create an account"
		switchHint = "ctrl+n: sign in instead"
	}

	labels := map[int]string{
		fieldName:     "Full name",
		fieldEmail:    "Email",
		fieldPassword: "Password",
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("odo"))
	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	for _, field := range m.login.order() {
		label := styles.MutedText.Render(labels[field])
		if field == m.login.focused() {
			label = styles.AccentText.Render(labels[field])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(styles.Card.Render(m.login.inputs[field].View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case st.IsLoading:
		verb := "Signing in..."
		if m.login.signUp {
			verb = "Creating account..."
		}
		b.WriteString(m.renderInterstitial(verb))
	case m.login.notice != "":
		b.WriteString(styles.WarningText.Render(m.login.notice))
	case st.Failure != nil:
		b.WriteString(styles.DangerText.Render(api.Message(st.Failure)))
	case m.notice != "":
		b.WriteString(styles.MutedText.Render(m.notice))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.FaintText.Render("enter: submit  tab: next field  " + switchHint + "  ctrl+c: quit"))
	return b.String()
}
