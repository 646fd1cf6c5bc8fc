package account

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

const opLogin = "login"

// LoginScreen signs an existing user in.
type LoginScreen struct {
	env  *screen.Env
	form form
}

var (
	_ screen.Screen          = (*LoginScreen)(nil)
	_ screen.KeyHintProvider = (*LoginScreen)(nil)
	_ screen.InputCapturer   = (*LoginScreen)(nil)
)

// NewLogin creates the sign-in screen.
func NewLogin(env *screen.Env) *LoginScreen {
	return &LoginScreen{
		env: env,
		form: newForm(
			components.NewTextInput("Username", "your username", false, 64),
			components.NewTextInput("Password", "", true, 128),
		),
	}
}

func (l *LoginScreen) Init() tea.Cmd { return l.form.fields[l.form.focus].Focus() }

func (l *LoginScreen) Title() string { return "Sign in" }

func (l *LoginScreen) CapturesInput() bool { return true }

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+N", Description: "Create account"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.OpDoneMsg:
		if msg.Op != opLogin {
			return l, nil
		}
		l.form.busy = false
		if msg.Err != nil {
			l.form.message = auth.LoginErrorMessage(msg.Err)
			l.form.fields[1].SetValue("")
			return l, nil
		}
		return l, router.Reset(l.env.Nav.Domains())

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+n" && !l.form.busy {
			return l, router.Push(l.env.Nav.Register())
		}
	}

	submit, cmd := l.form.update(msg)
	if submit {
		return l, l.submit()
	}
	return l, cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	username, password := l.form.value(0), l.form.value(1)
	l.form.busy = true
	l.form.message = ""
	svc := l.env.Auth
	return screen.Run(opLogin, func(ctx context.Context) error {
		return svc.Login(ctx, username, password)
	})
}

func (l *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	title := theme.Title.Render("Welcome back")
	sub := theme.Subtitle.Render("Sign in to continue learning.")
	body := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", l.form.view(cw))
	return components.Centered(components.Card(body, cw, true), width, height)
}
