package app

import (
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/screens/account"
	"github.com/abhisek/adaptlearn/internal/screens/assessment"
	"github.com/abhisek/adaptlearn/internal/screens/domainhome"
	"github.com/abhisek/adaptlearn/internal/screens/domains"
	"github.com/abhisek/adaptlearn/internal/screens/learn"
	"github.com/abhisek/adaptlearn/internal/screens/review"
)

// navigator builds every screen against the shared environment.
type navigator struct {
	env *screen.Env
}

var _ screen.Navigator = navigator{}

func (n navigator) Login() screen.Screen      { return account.NewLogin(n.env) }
func (n navigator) Register() screen.Screen   { return account.NewRegister(n.env) }
func (n navigator) Domains() screen.Screen    { return domains.New(n.env) }
func (n navigator) Assessment() screen.Screen { return assessment.New(n.env) }
func (n navigator) Learn() screen.Screen      { return learn.New(n.env) }
func (n navigator) Review() screen.Screen     { return review.New(n.env) }

func (n navigator) DomainHome(domainID int64) screen.Screen {
	return domainhome.New(n.env, domainID)
}
