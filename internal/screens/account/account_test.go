package account

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/screen/screentest"
)

// run executes a screen command and returns the messages it produced,
// feeding each back into s.
func run(t *testing.T, s screen.Screen, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	return screentest.Drain(t, cmd, func(msg tea.Msg) tea.Cmd {
		switch msg.(type) {
		case router.ResetScreenMsg, router.PushScreenMsg:
			return nil
		}
		_, next := s.Update(msg)
		return next
	})
}

func resetTarget(msgs []tea.Msg) string {
	for _, m := range msgs {
		if r, ok := m.(router.ResetScreenMsg); ok {
			return r.Screen.(*screentest.Dest).Name
		}
	}
	return ""
}

func TestLoginSuccess(t *testing.T) {
	f := screentest.New(t)
	require.NoError(t, f.Tokens.Clear())
	l := NewLogin(f.Env)

	l.form.fields[0].SetValue("ada")
	l.form.fields[1].SetValue("secret")
	l.Update(screentest.Key("tab"))
	assert.Equal(t, 1, l.form.focus)

	_, cmd := l.Update(screentest.Key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, l.form.busy)

	msgs := run(t, l, cmd)
	assert.Equal(t, "domains", resetTarget(msgs))
	assert.True(t, f.Tokens.SignedIn())
	assert.Equal(t, "ada", f.Tokens.Username())
}

func TestLoginWrongPassword(t *testing.T) {
	f := screentest.New(t)
	require.NoError(t, f.Tokens.Clear())
	l := NewLogin(f.Env)

	l.form.fields[0].SetValue("ada")
	l.form.fields[1].SetValue("nope")
	l.form.focusOn(1)
	_, cmd := l.Update(screentest.Key("enter"))
	msgs := run(t, l, cmd)

	assert.Empty(t, resetTarget(msgs))
	assert.False(t, l.form.busy)
	assert.Equal(t, "Incorrect credentials", l.form.message)
	assert.Empty(t, l.form.value(1), "password is cleared")
	assert.Contains(t, l.View(100, 30), "Incorrect credentials")
}

func TestLoginEnterOnFirstFieldMovesFocus(t *testing.T) {
	f := screentest.New(t)
	l := NewLogin(f.Env)

	_, cmd := l.Update(screentest.Key("enter"))
	assert.Equal(t, 1, l.form.focus)
	assert.False(t, l.form.busy)
	_ = cmd
}

func TestLoginTyping(t *testing.T) {
	f := screentest.New(t)
	l := NewLogin(f.Env)

	for _, k := range []string{"a", "d", "a"} {
		l.Update(screentest.Key(k))
	}
	assert.Equal(t, "ada", l.form.value(0))
	assert.True(t, l.CapturesInput())
}

func TestLoginOpensRegister(t *testing.T) {
	f := screentest.New(t)
	l := NewLogin(f.Env)

	_, cmd := l.Update(screentest.Key("ctrl+n"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "register", msg.Screen.(*screentest.Dest).Name)
}

func fillRegister(r *RegisterScreen, username, email, password, confirm string) {
	r.form.fields[fieldUsername].SetValue(username)
	r.form.fields[fieldEmail].SetValue(email)
	r.form.fields[fieldPassword].SetValue(password)
	r.form.fields[fieldConfirm].SetValue(confirm)
	r.form.focusOn(fieldConfirm)
}

func TestRegisterSignsIn(t *testing.T) {
	f := screentest.New(t)
	require.NoError(t, f.Tokens.Clear())
	r := NewRegister(f.Env)

	fillRegister(r, "grace", "grace@example.com", "hopper", "hopper")
	_, cmd := r.Update(screentest.Key("enter"))
	msgs := run(t, r, cmd)

	assert.Equal(t, "domains", resetTarget(msgs))
	assert.Equal(t, "grace", f.Tokens.Username())
}

func TestRegisterPasswordMismatch(t *testing.T) {
	f := screentest.New(t)
	r := NewRegister(f.Env)

	fillRegister(r, "grace", "grace@example.com", "hopper", "hoppr")
	_, cmd := r.Update(screentest.Key("enter"))
	run(t, r, cmd)

	assert.Equal(t, "Passwords do not match", r.form.message)
	assert.NotContains(t, f.Srv.CallNames(), "register")
}

func TestRegisterDuplicateUser(t *testing.T) {
	f := screentest.New(t)
	r := NewRegister(f.Env)

	fillRegister(r, "ada", "ada@example.com", "secret", "secret")
	_, cmd := r.Update(screentest.Key("enter"))
	run(t, r, cmd)

	assert.NotEmpty(t, r.form.message)
	assert.False(t, r.form.busy)
}
