package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/diag"
	"github.com/jask/storefront/internal/fetch"
)

const usersUnit = "users"

// Selection is the detail pane state of a MasterDetailFetcher.
type Selection int

const (
	NoSelection Selection = iota
	SelectionPending
	SelectionResolved
)

// MasterDetailFetcher lists users on mount and loads the full record of the
// selected one. Failures only reach the diagnostic sink.
type MasterDetailFetcher struct {
	instance
	catalog Catalog
	sink    diag.Sink

	list    fetch.Request
	users   []catalog.User
	cursor  int
	detail  fetch.Request
	pending int
	shown   *catalog.User

	spinner spinner.Model
}

func NewMasterDetailFetcher(parent context.Context, deps Deps) *MasterDetailFetcher {
	inst := newInstance(parent)
	return &MasterDetailFetcher{
		instance: inst,
		catalog:  deps.Catalog,
		sink:     deps.Sink,
		list:     inst.request(),
		detail:   inst.request(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

func (u *MasterDetailFetcher) Init() tea.Cmd {
	return tea.Batch(u.spinner.Tick, u.LoadAll())
}

// LoadAll reads the user list.
func (u *MasterDetailFetcher) LoadAll() tea.Cmd {
	tag := u.list.Begin()
	ctx, cat, sink := u.ctx, u.catalog, u.sink
	return func() tea.Msg {
		users, err := cat.Users(ctx)
		report(ctx, sink, usersUnit, "list users", err)
		return usersMsg{tag: tag, users: users, err: err}
	}
}

// SelectByID reads one user. Only the newest selection may replace the
// shown detail; a failure leaves the previous detail in place.
func (u *MasterDetailFetcher) SelectByID(id int) tea.Cmd {
	tag := u.detail.Begin()
	u.pending = id
	ctx, cat, sink := u.ctx, u.catalog, u.sink
	return func() tea.Msg {
		user, err := cat.User(ctx, id)
		report(ctx, sink, usersUnit, fmt.Sprintf("select user %d", id), err)
		return userDetailMsg{tag: tag, id: id, user: user, err: err}
	}
}

func (u *MasterDetailFetcher) Update(msg tea.Msg) (Unit, tea.Cmd) {
	switch m := msg.(type) {
	case usersMsg:
		if !u.list.Resolve(m.tag, m.err) {
			return u, nil
		}
		if m.err == nil {
			u.users = m.users
		}
		if u.cursor >= len(u.users) {
			u.cursor = 0
		}
	case userDetailMsg:
		if !u.detail.Resolve(m.tag, m.err) {
			return u, nil
		}
		if m.err == nil {
			user := m.user
			u.shown = &user
		}
	case spinner.TickMsg:
		if u.list.Loading() || u.detail.Loading() {
			var cmd tea.Cmd
			u.spinner, cmd = u.spinner.Update(m)
			return u, cmd
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Up):
			if u.cursor > 0 {
				u.cursor--
			}
		case key.Matches(m, keys.Down):
			if u.cursor < len(u.users)-1 {
				u.cursor++
			}
		case key.Matches(m, keys.Select):
			if len(u.users) == 0 {
				return u, nil
			}
			return u, tea.Batch(u.SelectByID(u.users[u.cursor].ID), u.spinner.Tick)
		}
	}
	return u, nil
}

func (u *MasterDetailFetcher) View() string {
	out := titleStyle.Render("Users") + "\n"
	if u.list.Loading() {
		return out + u.spinner.View() + " Loading…"
	}

	var list strings.Builder
	for i, user := range u.users {
		marker := "  "
		line := user.FullName()
		if i == u.cursor {
			marker = cursorStyle.Render("▶ ")
		}
		if u.shown != nil && u.shown.ID == user.ID {
			line += mutedStyle.Render(" •")
		}
		list.WriteString(marker + line + "\n")
	}
	if len(u.users) == 0 {
		list.WriteString(mutedStyle.Render("No users.") + "\n")
	}

	detail := ""
	if u.detail.Loading() {
		detail = u.spinner.View() + fmt.Sprintf(" Fetching user %d…", u.pending)
	}
	if u.shown != nil {
		if detail != "" {
			detail += "\n"
		}
		detail += renderUser(*u.shown)
	}
	if detail == "" {
		return out + list.String()
	}
	return out + lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail)
}

func renderUser(user catalog.User) string {
	lines := []string{
		titleStyle.Render("Selected user"),
		"Name: " + user.FullName(),
		"Email: " + user.Email,
	}
	if user.Username != "" {
		lines = append(lines, "Username: "+user.Username)
	}
	if user.Phone != "" {
		lines = append(lines, "Phone: "+user.Phone)
	}
	if user.Address.City != "" {
		lines = append(lines, fmt.Sprintf("Address: %d %s, %s %s", user.Address.Number, user.Address.Street, user.Address.City, user.Address.Zipcode))
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}

// Selection reports the detail pane state.
func (u *MasterDetailFetcher) Selection() Selection {
	switch u.detail.State() {
	case fetch.Idle:
		return NoSelection
	case fetch.Loading:
		return SelectionPending
	default:
		return SelectionResolved
	}
}

// Users is the loaded list, empty after a failed read.
func (u *MasterDetailFetcher) Users() []catalog.User { return u.users }

// Shown is the detail currently displayed, if any.
func (u *MasterDetailFetcher) Shown() (catalog.User, bool) {
	if u.shown == nil {
		return catalog.User{}, false
	}
	return *u.shown, true
}

func (u *MasterDetailFetcher) Title() string      { return "Users" }
func (u *MasterDetailFetcher) Focus() tea.Cmd     { return nil }
func (u *MasterDetailFetcher) Blur()              {}
func (u *MasterDetailFetcher) CapturesText() bool { return false }
func (u *MasterDetailFetcher) SetSize(_, _ int)   {}
