// Package domains lists the learning domains grouped by category.
package domains

import (
	"context"
	"errors"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/learning"
	"github.com/abhisek/adaptlearn/internal/router"
	"github.com/abhisek/adaptlearn/internal/screen"
	"github.com/abhisek/adaptlearn/internal/ui/components"
	"github.com/abhisek/adaptlearn/internal/ui/layout"
	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

const uncategorized = "other"

var titleCase = cases.Title(language.English)

// DomainsScreen lets the learner pick a domain. Domains already in progress
// open their home; new ones start with the placement assessment.
type DomainsScreen struct {
	env  *screen.Env
	menu components.Menu

	// listed is the domain slice the menu was built from.
	listed []api.Domain
	// pending is the domain being selected.
	pending *api.Domain
}

var (
	_ screen.Screen          = (*DomainsScreen)(nil)
	_ screen.KeyHintProvider = (*DomainsScreen)(nil)
	_ screen.Resumer         = (*DomainsScreen)(nil)
)

// New creates the domain list screen.
func New(env *screen.Env) *DomainsScreen {
	d := &DomainsScreen{env: env}
	d.rebuild(env.State().Domains)
	return d
}

func (d *DomainsScreen) Title() string { return "Domains" }

func (d *DomainsScreen) Init() tea.Cmd {
	return d.fetch()
}

// Resume refreshes the in-progress flags after returning from a domain.
func (d *DomainsScreen) Resume() tea.Cmd {
	return d.fetch()
}

func (d *DomainsScreen) fetch() tea.Cmd {
	orch := d.env.Orch
	return screen.Run(learning.OpFetchDomains, orch.FetchDomains)
}

func (d *DomainsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Refresh"},
		{Key: "Ctrl+L", Description: "Sign out"},
	}
}

func (d *DomainsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateChangedMsg:
		d.rebuild(msg.State.Domains)
		return d, nil

	case screen.OpDoneMsg:
		if msg.Op != learning.OpSelectDomain || d.pending == nil {
			return d, nil
		}
		dom := *d.pending
		d.pending = nil
		// An open domain only needs the selection; its placement questions
		// failing to load does not block it.
		if msg.Err != nil && (!dom.InProgress || errors.Is(msg.Err, learning.ErrStale)) {
			return d, nil
		}
		return d, router.Push(d.target(dom))

	case tea.KeyPressMsg:
		if d.pending != nil {
			return d, nil
		}
		if msg.String() == "r" {
			return d, d.fetch()
		}
	}

	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DomainsScreen) target(dom api.Domain) screen.Screen {
	if dom.InProgress {
		return d.env.Nav.DomainHome(dom.ID)
	}
	return d.env.Nav.Assessment()
}

func (d *DomainsScreen) open(dom api.Domain) tea.Cmd {
	d.pending = &dom
	orch := d.env.Orch
	return screen.Run(learning.OpSelectDomain, func(ctx context.Context) error {
		return orch.SelectDomain(ctx, dom)
	})
}

// rebuild regroups the menu when the domain list changed, keeping the
// highlighted row where possible.
func (d *DomainsScreen) rebuild(list []api.Domain) {
	if d.listed != nil && sameSlice(d.listed, list) {
		return
	}
	d.listed = list

	selected := d.menu.Selected
	items := make([]components.MenuItem, 0, len(list)+4)
	for _, g := range Group(list) {
		items = append(items, components.MenuItem{Label: g.Title, Heading: true})
		for _, dom := range g.Domains {
			detail := dom.Description
			if dom.InProgress {
				detail = "in progress"
			}
			items = append(items, components.MenuItem{
				Label:  dom.Name,
				Detail: detail,
				Action: func() tea.Cmd { return d.open(dom) },
			})
		}
	}
	d.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Heading {
		d.menu.Selected = selected
	}
}

func sameSlice(a, b []api.Domain) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// Category is a titled group of domains.
type Category struct {
	Title   string
	Domains []api.Domain
}

// Group buckets domains by category. Categories are sorted by title, with
// domains lacking one collected last under "Other".
func Group(list []api.Domain) []Category {
	byKey := map[string][]api.Domain{}
	for _, dom := range list {
		key := strings.ToLower(strings.TrimSpace(dom.Category))
		if key == "" {
			key = uncategorized
		}
		byKey[key] = append(byKey[key], dom)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == uncategorized) != (keys[j] == uncategorized) {
			return keys[j] == uncategorized
		}
		return keys[i] < keys[j]
	})

	out := make([]Category, 0, len(keys))
	for _, k := range keys {
		out = append(out, Category{Title: titleCase.String(k), Domains: byKey[k]})
	}
	return out
}

func (d *DomainsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	s := d.env.State()

	var body string
	switch {
	case len(s.Domains) == 0 && s.IsLoading:
		body = theme.Hint.Render("Loading domains...")
	case len(s.Domains) == 0:
		body = theme.Hint.Render("No domains available yet. Press r to refresh.")
	default:
		body = d.menu.View()
	}
	if d.pending != nil {
		body += "\n" + theme.Hint.Render("Opening "+d.pending.Name+"...")
	}

	title := theme.Title.Render("Choose a domain")
	sub := theme.Subtitle.Render("Pick up where you left off or start something new.")
	content := lipgloss.JoinVertical(lipgloss.Left, title, sub, body)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(content, cw, false))
}
