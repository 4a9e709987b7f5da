package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/diag"
	"github.com/jask/storefront/internal/fetch"
)

// Unit is one independently rendering, independently fetching component.
type Unit interface {
	Init() tea.Cmd
	Update(tea.Msg) (Unit, tea.Cmd)
	View() string

	Title() string
	Focus() tea.Cmd
	Blur()
	// CapturesText reports whether printable keys belong to the unit.
	CapturesText() bool
	SetSize(width, height int)
	// Unmount cancels every read still in flight for this instance.
	Unmount()
}

// Catalog is the subset of the catalog client the units read from.
type Catalog interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	ProductsInCategory(ctx context.Context, category string) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Users(ctx context.Context) ([]catalog.User, error)
	User(ctx context.Context, id int) (catalog.User, error)
}

// Deps are shared by every unit. None of them carry unit state.
type Deps struct {
	Catalog        Catalog
	Sink           diag.Sink
	CurrencyPrefix string
}

// instance is the identity and lifetime of one mounted unit.
type instance struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

func newInstance(parent context.Context) instance {
	ctx, cancel := context.WithCancel(parent)
	return instance{id: uuid.New(), ctx: ctx, cancel: cancel}
}

func (i instance) request() fetch.Request { return fetch.NewRequest(i.id) }

func (i instance) Unmount() { i.cancel() }

// messages

type productsMsg struct {
	tag      fetch.Tag
	products []catalog.Product
	err      error
}

type categoriesMsg struct {
	tag    fetch.Tag
	labels []string
	err    error
}

type usersMsg struct {
	tag   fetch.Tag
	users []catalog.User
	err   error
}

type userDetailMsg struct {
	tag  fetch.Tag
	id   int
	user catalog.User
	err  error
}

func report(ctx context.Context, sink diag.Sink, unit, op string, err error) {
	if err == nil || sink == nil {
		return
	}
	// reads cut short by unmount are not failures
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return
	}
	sink.Report(ctx, diag.Failure{Unit: unit, Operation: op, Err: err})
}
