package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/fetch"
)

// ProductLoader performs the single read of a CollectionFetcher.
type ProductLoader func(ctx context.Context) ([]catalog.Product, error)

// CollectionFetcher loads one product collection on mount and renders it as
// a card grid. Failures are shown in place of the grid.
type CollectionFetcher struct {
	instance
	title    string
	load     ProductLoader
	prefix   string
	req      fetch.Request
	products []catalog.Product
	spinner  spinner.Model
	width    int
}

func NewCollectionFetcher(parent context.Context, title string, load ProductLoader, prefix string) *CollectionFetcher {
	inst := newInstance(parent)
	return &CollectionFetcher{
		instance: inst,
		title:    title,
		load:     load,
		prefix:   prefix,
		req:      inst.request(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

func (c *CollectionFetcher) Init() tea.Cmd {
	return tea.Batch(c.spinner.Tick, c.Load())
}

// Load starts a read. State is Loading from the moment Load returns.
func (c *CollectionFetcher) Load() tea.Cmd {
	tag := c.req.Begin()
	ctx, load := c.ctx, c.load
	return func() tea.Msg {
		ps, err := load(ctx)
		return productsMsg{tag: tag, products: ps, err: err}
	}
}

func (c *CollectionFetcher) Update(msg tea.Msg) (Unit, tea.Cmd) {
	switch m := msg.(type) {
	case productsMsg:
		if !c.req.Resolve(m.tag, m.err) {
			return c, nil
		}
		if m.err == nil {
			c.products = m.products
		}
	case spinner.TickMsg:
		if c.req.Loading() {
			var cmd tea.Cmd
			c.spinner, cmd = c.spinner.Update(m)
			return c, cmd
		}
	}
	return c, nil
}

func (c *CollectionFetcher) View() string {
	out := titleStyle.Render(c.title) + "\n"
	switch c.req.State() {
	case fetch.Idle:
		return out + mutedStyle.Render("Not loaded.")
	case fetch.Loading:
		return out + c.spinner.View() + " Loading…"
	case fetch.Failed:
		return out + errorStyle.Render(c.req.Err().Error())
	}
	return out + renderGrid(c.products, c.prefix, c.width)
}

// Visible returns the records currently rendered as cards.
func (c *CollectionFetcher) Visible() []catalog.Product {
	if c.req.State() != fetch.Success {
		return nil
	}
	return c.products
}

// State is the tri-state of the collection read.
func (c *CollectionFetcher) State() fetch.State { return c.req.State() }

func (c *CollectionFetcher) Title() string        { return c.title }
func (c *CollectionFetcher) Focus() tea.Cmd       { return nil }
func (c *CollectionFetcher) Blur()                {}
func (c *CollectionFetcher) CapturesText() bool   { return false }
func (c *CollectionFetcher) SetSize(width, _ int) { c.width = width }
