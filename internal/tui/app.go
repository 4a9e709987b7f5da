package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/storefront/internal/catalog"
)

type factory func(ctx context.Context) Unit

// App ties together units. Only the focused unit receives keys; every other
// message is broadcast and each unit drops what is not tagged for it.
type App struct {
	ctx       context.Context
	factories []factory
	units     []Unit
	focus     int
	width     int
	height    int
	help      help.Model
	status    string
}

// New mounts every unit. featured names the category shown by the second
// collection; an empty label leaves that collection out.
func New(ctx context.Context, deps Deps, featured string) *App {
	factories := []factory{
		func(context.Context) Unit { return NewKeywordEcho() },
		func(ctx context.Context) Unit {
			return NewCollectionFetcher(ctx, "Products", deps.Catalog.Products, deps.CurrencyPrefix)
		},
	}
	if featured != "" {
		factories = append(factories, func(ctx context.Context) Unit {
			load := func(ctx context.Context) ([]catalog.Product, error) {
				return deps.Catalog.ProductsInCategory(ctx, featured)
			}
			return NewCollectionFetcher(ctx, "Featured: "+featured, load, deps.CurrencyPrefix)
		})
	}
	factories = append(factories,
		func(ctx context.Context) Unit { return NewMasterDetailFetcher(ctx, deps) },
		func(ctx context.Context) Unit { return NewCategoryPicker(ctx, deps) },
	)

	a := &App{ctx: ctx, factories: factories, help: help.New()}
	for _, f := range factories {
		a.units = append(a.units, f(ctx))
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.units)+1)
	for _, u := range a.units {
		cmds = append(cmds, u.Init())
	}
	cmds = append(cmds, a.units[a.focus].Focus())
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		for _, u := range a.units {
			u.SetSize(a.width, a.bodyHeight())
		}
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	}

	cmds := make([]tea.Cmd, 0, len(a.units))
	for i, u := range a.units {
		next, cmd := u.Update(msg)
		a.units[i] = next
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	focused := a.units[a.focus]
	switch {
	case key.Matches(m, keys.ForceQuit):
		return a, a.quit()
	case key.Matches(m, keys.Next):
		return a, a.moveFocus(1)
	case key.Matches(m, keys.Prev):
		return a, a.moveFocus(-1)
	case key.Matches(m, keys.Remount):
		return a, a.Remount(a.focus)
	case key.Matches(m, keys.Quit) && !focused.CapturesText():
		return a, a.quit()
	}
	next, cmd := focused.Update(m)
	a.units[a.focus] = next
	return a, cmd
}

func (a *App) moveFocus(delta int) tea.Cmd {
	n := len(a.units)
	a.units[a.focus].Blur()
	a.focus = (a.focus + delta + n) % n
	a.status = ""
	return a.units[a.focus].Focus()
}

// Remount replaces unit i with a fresh instance. The old instance's reads
// are cancelled and anything they still deliver is dropped.
func (a *App) Remount(i int) tea.Cmd {
	a.units[i].Unmount()
	u := a.factories[i](a.ctx)
	if a.width > 0 {
		u.SetSize(a.width, a.bodyHeight())
	}
	a.units[i] = u
	a.status = "reloaded " + strings.ToLower(u.Title())
	cmds := []tea.Cmd{u.Init()}
	if i == a.focus {
		cmds = append(cmds, u.Focus())
	}
	return tea.Batch(cmds...)
}

func (a *App) quit() tea.Cmd {
	for _, u := range a.units {
		u.Unmount()
	}
	return tea.Quit
}

// bodyHeight leaves room for the tab bar and footer.
func (a *App) bodyHeight() int {
	return max(0, a.height-4)
}

func (a *App) View() string {
	tabs := make([]string, 0, len(a.units))
	for i, u := range a.units {
		style := inactiveTabStyle
		if i == a.focus {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(u.Title()))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(a.units[a.focus].View())
	b.WriteString("\n\n")
	b.WriteString(a.help.View(keys))
	if a.status != "" {
		b.WriteString("  " + mutedStyle.Render(a.status))
	}
	return b.String()
}

// Units returns the mounted units in tab order.
func (a *App) Units() []Unit { return a.units }

// Focused is the index of the unit receiving keys.
func (a *App) Focused() int { return a.focus }
