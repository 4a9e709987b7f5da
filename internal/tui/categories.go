package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/diag"
	"github.com/jask/storefront/internal/fetch"
)

const categoriesUnit = "categories"

// CategoryPicker lists category labels on mount and shows the products of
// the chosen one. Option 0 is the empty "Select" label. Failures only reach
// the diagnostic sink.
type CategoryPicker struct {
	instance
	catalog Catalog
	sink    diag.Sink
	prefix  string

	cats     fetch.Request
	labels   []string
	cursor   int
	selected string
	products fetch.Request
	grid     []catalog.Product

	query    textinput.Model
	querying bool
	notice   string

	spinner spinner.Model
	width   int
}

func NewCategoryPicker(parent context.Context, deps Deps) *CategoryPicker {
	inst := newInstance(parent)
	q := textinput.New()
	q.Prompt = "/"
	q.Placeholder = "category"
	return &CategoryPicker{
		instance: inst,
		catalog:  deps.Catalog,
		sink:     deps.Sink,
		prefix:   deps.CurrencyPrefix,
		cats:     inst.request(),
		products: inst.request(),
		query:    q,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

func (p *CategoryPicker) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.LoadCategories())
}

// LoadCategories reads the category labels.
func (p *CategoryPicker) LoadCategories() tea.Cmd {
	tag := p.cats.Begin()
	ctx, cat, sink := p.ctx, p.catalog, p.sink
	return func() tea.Msg {
		labels, err := cat.Categories(ctx)
		report(ctx, sink, categoriesUnit, "list categories", err)
		return categoriesMsg{tag: tag, labels: labels, err: err}
	}
}

// OnCategoryChange selects label and reads its products. The empty label is
// a valid selection that reads nothing and leaves the grid as it was.
func (p *CategoryPicker) OnCategoryChange(label string) tea.Cmd {
	p.selected = label
	if label == "" {
		return nil
	}
	tag := p.products.Begin()
	ctx, cat, sink := p.ctx, p.catalog, p.sink
	return func() tea.Msg {
		ps, err := cat.ProductsInCategory(ctx, label)
		report(ctx, sink, categoriesUnit, "list products in "+label, err)
		return productsMsg{tag: tag, products: ps, err: err}
	}
}

func (p *CategoryPicker) Update(msg tea.Msg) (Unit, tea.Cmd) {
	switch m := msg.(type) {
	case categoriesMsg:
		if !p.cats.Resolve(m.tag, m.err) {
			return p, nil
		}
		if m.err == nil {
			p.labels = m.labels
		}
		if p.cursor > len(p.labels) {
			p.cursor = 0
		}
	case productsMsg:
		if !p.products.Resolve(m.tag, m.err) {
			return p, nil
		}
		if m.err == nil {
			p.grid = m.products
		}
	case spinner.TickMsg:
		if p.cats.Loading() || p.products.Loading() {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(m)
			return p, cmd
		}
	case tea.KeyMsg:
		if p.querying {
			return p.updateQuery(m)
		}
		return p.updateKeys(m)
	default:
		if p.querying {
			var cmd tea.Cmd
			p.query, cmd = p.query.Update(msg)
			return p, cmd
		}
	}
	return p, nil
}

func (p *CategoryPicker) updateKeys(m tea.KeyMsg) (Unit, tea.Cmd) {
	switch {
	case key.Matches(m, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(m, keys.Down):
		if p.cursor < len(p.labels) {
			p.cursor++
		}
	case key.Matches(m, keys.Select):
		return p, p.choose(p.option(p.cursor))
	case key.Matches(m, keys.Search):
		p.querying = true
		p.notice = ""
		p.query.SetValue("")
		return p, p.query.Focus()
	}
	return p, nil
}

func (p *CategoryPicker) updateQuery(m tea.KeyMsg) (Unit, tea.Cmd) {
	switch {
	case key.Matches(m, keys.Cancel):
		p.querying = false
		p.query.Blur()
		return p, nil
	case key.Matches(m, keys.Select):
		p.querying = false
		p.query.Blur()
		text := p.query.Value()
		label, ok := catalog.ResolveCategory(p.labels, text)
		if !ok {
			p.notice = fmt.Sprintf("no category matches %q", text)
			return p, nil
		}
		for i, l := range p.labels {
			if l == label {
				p.cursor = i + 1
			}
		}
		return p, p.choose(label)
	}
	var cmd tea.Cmd
	p.query, cmd = p.query.Update(m)
	return p, cmd
}

func (p *CategoryPicker) choose(label string) tea.Cmd {
	cmd := p.OnCategoryChange(label)
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, p.spinner.Tick)
}

// option maps a cursor position to a label; 0 is the empty label.
func (p *CategoryPicker) option(i int) string {
	if i <= 0 || i > len(p.labels) {
		return ""
	}
	return p.labels[i-1]
}

func (p *CategoryPicker) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Categories") + "\n")
	if p.cats.Loading() {
		b.WriteString(p.spinner.View() + " Loading…\n")
	} else {
		for i := 0; i <= len(p.labels); i++ {
			label := p.option(i)
			text := label
			if i == 0 {
				text = "Select"
			}
			marker := "  "
			if i == p.cursor {
				marker = cursorStyle.Render("▶ ")
			}
			if label == p.selected && (i > 0 || p.selected == "") {
				text += mutedStyle.Render(" ✓")
			}
			b.WriteString(marker + text + "\n")
		}
	}
	if p.querying {
		b.WriteString(p.query.View() + "\n")
	}
	if p.notice != "" {
		b.WriteString(mutedStyle.Render(p.notice) + "\n")
	}
	b.WriteString("\n")
	if p.products.Loading() {
		b.WriteString(p.spinner.View() + " Loading " + p.selected + "…")
		return b.String()
	}
	if p.products.State() == fetch.Idle {
		return b.String()
	}
	b.WriteString(renderGrid(p.grid, p.prefix, p.width))
	return b.String()
}

// Labels are the loaded category labels.
func (p *CategoryPicker) Labels() []string { return p.labels }

// Selected is the current label, "" when nothing is chosen.
func (p *CategoryPicker) Selected() string { return p.selected }

// Visible returns the records currently rendered as cards.
func (p *CategoryPicker) Visible() []catalog.Product { return p.grid }

func (p *CategoryPicker) Blur() {
	p.querying = false
	p.query.Blur()
}

func (p *CategoryPicker) Title() string        { return "Categories" }
func (p *CategoryPicker) Focus() tea.Cmd       { return nil }
func (p *CategoryPicker) CapturesText() bool   { return p.querying }
func (p *CategoryPicker) SetSize(width, _ int) { p.width = width }
