package account

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

const opRegister = "register"

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

// RegisterScreen creates an account and signs in with it.
type RegisterScreen struct {
	env  *screen.Env
	form form
}

var (
	_ screen.Screen          = (*RegisterScreen)(nil)
	_ screen.KeyHintProvider = (*RegisterScreen)(nil)
	_ screen.InputCapturer   = (*RegisterScreen)(nil)
)

// NewRegister creates the registration screen.
func NewRegister(env *screen.Env) *RegisterScreen {
	return &RegisterScreen{
		env: env,
		form: newForm(
			components.NewTextInput("Username", "pick a username", false, 64),
			components.NewTextInput("Email", "you@example.com", false, 128),
			components.NewTextInput("Password", "", true, 128),
			components.NewTextInput("Confirm password", "", true, 128),
		),
	}
}

func (r *RegisterScreen) Init() tea.Cmd { return r.form.fields[r.form.focus].Focus() }

func (r *RegisterScreen) Title() string { return "Create account" }

func (r *RegisterScreen) CapturesInput() bool { return true }

func (r *RegisterScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Register"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *RegisterScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if done, ok := msg.(screen.OpDoneMsg); ok {
		if done.Op != opRegister {
			return r, nil
		}
		r.form.busy = false
		if done.Err != nil {
			r.form.message = auth.RegisterErrorMessage(done.Err)
			return r, nil
		}
		return r, router.Reset(r.env.Nav.Domains())
	}

	submit, cmd := r.form.update(msg)
	if submit {
		return r, r.submit()
	}
	return r, cmd
}

func (r *RegisterScreen) submit() tea.Cmd {
	reg := api.Registration{
		Username: r.form.value(fieldUsername),
		Email:    r.form.value(fieldEmail),
		Password: r.form.value(fieldPassword),
	}
	confirm := r.form.value(fieldConfirm)
	r.form.busy = true
	r.form.message = ""
	svc := r.env.Auth
	return screen.Run(opRegister, func(ctx context.Context) error {
		return svc.Register(ctx, reg, confirm)
	})
}

func (r *RegisterScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	title := theme.Title.Render("Create your account")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.view(cw))
	return components.Centered(components.Card(body, cw, true), width, height)
}
