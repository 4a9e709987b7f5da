package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/diag"
)

type stubCatalog struct {
	mu    sync.Mutex
	calls []string

	products   []catalog.Product
	categories []string
	users      []catalog.User

	productsErr   error
	categoriesErr error
	usersErr      error
	categoryErr   map[string]error
	userErr       map[int]error
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		products: []catalog.Product{
			{ID: 1, Title: "Fjallraven Backpack", Price: 109.95, Category: "men's clothing", Image: "https://img/1.jpg"},
			{ID: 5, Title: "Dragon Bracelet", Price: 695, Category: "jewelery", Image: "https://img/5.jpg"},
			{ID: 6, Title: "Solid Gold Petite", Price: 168, Category: "jewelery", Image: "https://img/6.jpg"},
			{ID: 9, Title: "WD 2TB Drive", Price: 64, Category: "electronics", Image: "https://img/9.jpg"},
			{ID: 10, Title: "SanDisk SSD", Price: 109, Category: "electronics", Image: "https://img/10.jpg"},
		},
		categories: []string{"electronics", "jewelery", "men's clothing"},
		users: []catalog.User{
			{ID: 1, Email: "john@gmail.com", Username: "johnd", Name: catalog.Name{Firstname: "john", Lastname: "doe"}},
			{ID: 2, Email: "morrison@gmail.com", Username: "mor_2314", Name: catalog.Name{Firstname: "david", Lastname: "morrison"}},
			{ID: 3, Email: "kevin@gmail.com", Username: "kevinryan", Name: catalog.Name{Firstname: "kevin", Lastname: "ryan"}},
		},
		categoryErr: map[string]error{},
		userErr:     map[int]error{},
	}
}

func (s *stubCatalog) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubCatalog) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubCatalog) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *stubCatalog) Products(context.Context) ([]catalog.Product, error) {
	s.record("products")
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	return s.products, nil
}

func (s *stubCatalog) ProductsInCategory(_ context.Context, category string) ([]catalog.Product, error) {
	s.record("category " + category)
	if err := s.categoryErr[category]; err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) Categories(context.Context) ([]string, error) {
	s.record("categories")
	if s.categoriesErr != nil {
		return nil, s.categoriesErr
	}
	return s.categories, nil
}

func (s *stubCatalog) Users(context.Context) ([]catalog.User, error) {
	s.record("users")
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.users, nil
}

func (s *stubCatalog) User(_ context.Context, id int) (catalog.User, error) {
	s.record(fmt.Sprintf("user %d", id))
	if err := s.userErr[id]; err != nil {
		return catalog.User{}, err
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return catalog.User{}, catalog.ErrNotFound
}

type sinkRecorder struct {
	mu       sync.Mutex
	failures []diag.Failure
}

func (r *sinkRecorder) Report(_ context.Context, f diag.Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

func (r *sinkRecorder) Failures() []diag.Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]diag.Failure(nil), r.failures...)
}

func testDeps(cat Catalog, sink diag.Sink) Deps {
	return Deps{Catalog: cat, Sink: sink, CurrencyPrefix: "R$"}
}

// run executes cmd and flattens batches. Commands that block (cursor blink,
// spinner frames) are abandoned after a short wait.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		switch m := msg.(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range m {
				out = append(out, run(c)...)
			}
			return out
		default:
			return []tea.Msg{msg}
		}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// pump feeds the messages cmd produces back into update until nothing is
// left. Spinner frames are skipped so the loop terminates.
func pump(t *testing.T, update func(tea.Msg) tea.Cmd, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := run(cmd)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		queue = append(queue, run(update(msg))...)
	}
	return seen
}

func pumpUnit(t *testing.T, u Unit, cmd tea.Cmd) Unit {
	t.Helper()
	pump(t, func(msg tea.Msg) tea.Cmd {
		var next tea.Cmd
		u, next = u.Update(msg)
		return next
	}, cmd)
	return u
}

func pumpApp(t *testing.T, a *App, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	return pump(t, func(msg tea.Msg) tea.Cmd {
		_, next := a.Update(msg)
		return next
	}, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(u Unit, s string) Unit {
	for _, r := range s {
		u, _ = u.Update(runes(string(r)))
	}
	return u
}
