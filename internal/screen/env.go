package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/learning"
)

// Navigator builds screens by destination so that screens never import
// each other.
type Navigator interface {
	Login() Screen
	Register() Screen
	Domains() Screen
	Assessment() Screen
	DomainHome(domainID int64) Screen
	Learn() Screen
	Review() Screen
}

// Env is what every screen needs to talk to the session.
type Env struct {
	Orch *learning.Orchestrator
	Auth *auth.Service
	Nav  Navigator
	Log  *zap.Logger
}

// State returns the current session state.
func (e *Env) State() learning.State {
	return e.Orch.Store().State()
}

// StateChangedMsg is delivered to the active screen after a transition.
type StateChangedMsg struct {
	State learning.State
}

// OpDoneMsg reports the end of a session operation started with Run.
type OpDoneMsg struct {
	Op  string
	Err error
}

// Run wraps a blocking session operation into a command.
func Run(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: op, Err: fn(context.Background())}
	}
}
