// Package app is the root Bubble Tea model: it owns the screen stack, the
// header and the error banner, and forwards session changes to the active
// screen.
package app

import (
	"context"
	"fmt"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/screens/welcome"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

// ProfileSource loads the signed-in user's summary for the header.
type ProfileSource interface {
	Profile(ctx context.Context) (*api.Profile, error)
}

// Options wires the app to the session.
type Options struct {
	Orch     *learning.Orchestrator
	Auth     *auth.Service
	Profiles ProfileSource // nil = no header stats
	Signals  *Signals      // nil = 401s are not watched
	Log      *zap.Logger

	// NoSplash starts directly on the first real screen.
	NoSplash bool
}

type stateChangedMsg struct{}

type unauthorizedMsg struct{}

type profileMsg struct {
	version int
	profile *api.Profile
	err     error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env      *screen.Env
	router   *router.Router
	profiles ProfileSource
	signals  *Signals
	log      *zap.Logger

	changes     chan struct{}
	unsubscribe func()

	spinner spinner.Model
	account layout.Account
	// profileVersion is the ProfileVersion the header was last loaded for.
	profileVersion int

	width  int
	height int
}

// New creates the root model. Call Close when the program has exited.
func New(opts Options) AppModel {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	env := &screen.Env{Orch: opts.Orch, Auth: opts.Auth, Log: log}
	env.Nav = navigator{env: env}

	m := AppModel{
		env:            env,
		profiles:       opts.Profiles,
		signals:        opts.Signals,
		log:            log,
		changes:        make(chan struct{}, 1),
		profileVersion: -1,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}

	first := m.start
	if opts.NoSplash {
		m.router = router.New(first())
	} else {
		m.router = router.New(welcome.New(first))
	}

	changes := m.changes
	m.unsubscribe = opts.Orch.Store().Subscribe(func(_, _ learning.State, _ learning.Action) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	return m
}

// start is the first screen after the splash.
func (m AppModel) start() screen.Screen {
	if m.signedIn() {
		return m.env.Nav.Domains()
	}
	return m.env.Nav.Login()
}

func (m AppModel) signedIn() bool {
	return m.env.Auth != nil && m.env.Auth.Tokens().SignedIn()
}

// Close detaches the model from the session store.
func (m AppModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m AppModel) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return stateChangedMsg{}
	}
}

func (m AppModel) waitForUnauthorized() tea.Cmd {
	if m.signals == nil {
		return nil
	}
	ch := m.signals.unauthorized
	return func() tea.Msg {
		<-ch
		return unauthorizedMsg{}
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Active().Init(),
		m.waitForChange(),
		m.waitForUnauthorized(),
		m.spinner.Tick,
		m.refreshProfile(),
	)
}

// refreshProfile reloads the header when the session says it went stale.
func (m *AppModel) refreshProfile() tea.Cmd {
	if m.profiles == nil || !m.signedIn() {
		return nil
	}
	version := m.env.State().ProfileVersion
	if version == m.profileVersion {
		return nil
	}
	m.profileVersion = version
	profiles := m.profiles
	return func() tea.Msg {
		p, err := profiles.Profile(context.Background())
		return profileMsg{version: version, profile: p, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateChangedMsg:
		s := m.env.State()
		cmd := m.router.Update(screen.StateChangedMsg{State: s})
		return m, tea.Batch(cmd, m.waitForChange(), m.refreshProfile())

	case unauthorizedMsg:
		m.log.Info("session expired, returning to sign-in")
		m.env.Orch.Reset()
		m.account = layout.Account{}
		m.profileVersion = -1
		return m, tea.Batch(router.Reset(m.env.Nav.Login()), m.waitForUnauthorized())

	case profileMsg:
		if msg.err != nil {
			m.log.Debug("profile refresh failed", zap.Error(msg.err))
			m.profileVersion = -1
			return m, nil
		}
		if msg.profile != nil && msg.version == m.profileVersion {
			m.account = layout.Account{
				Username:          msg.profile.Username,
				StartedDomains:    msg.profile.StartedDomains,
				CompletedInsights: msg.profile.CompletedInsights,
			}
		}
		return m, nil

	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.ResetScreenMsg:
		m.env.Orch.DismissError()
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.refreshProfile())

	case tea.KeyPressMsg:
		if cmd, handled := m.globalKey(msg); handled {
			return m, cmd
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// globalKey handles the app-wide shortcuts.
func (m *AppModel) globalKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "esc":
		if m.router.Depth() > 1 {
			return router.Pop(), true
		}
		m.env.Orch.DismissError()
		return nil, true
	case "ctrl+g":
		if !m.signedIn() {
			return nil, true
		}
		return router.Reset(m.env.Nav.Domains()), true
	case "ctrl+l":
		if !m.signedIn() {
			return nil, true
		}
		return m.logout(), true
	case "ctrl+x":
		m.env.Orch.DismissError()
		return nil, true
	case "q":
		if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturesInput() {
			return nil, false
		}
		if m.router.Depth() == 1 {
			return tea.Quit, true
		}
	}
	return nil, false
}

func (m *AppModel) logout() tea.Cmd {
	if err := m.env.Auth.Logout(); err != nil {
		m.log.Warn("sign out failed", zap.Error(err))
	}
	m.env.Orch.Reset()
	m.account = layout.Account{}
	m.profileVersion = -1
	return router.Reset(m.env.Nav.Login())
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the whole frame at the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	s := m.env.State()
	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	if s.IsLoading {
		title = m.spinner.View() + " " + title
	}

	header := layout.RenderHeader(title, m.account, m.width)
	banner := layout.RenderErrorBanner(s.Error, m.width)
	footer := layout.RenderFooter(m.footerHints(active, s), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if banner != "" {
		contentHeight -= lipgloss.Height(banner)
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, banner, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen, s learning.State) []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.Error != "" {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+X", Description: "Dismiss"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
