package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/fetch"
)

func TestCollectionFetcherLifecycle(t *testing.T) {
	cat := newStubCatalog()
	c := NewCollectionFetcher(context.Background(), "Products", cat.Products, "R$")
	require.Equal(t, fetch.Idle, c.State())
	require.Contains(t, c.View(), "Not loaded.")

	cmd := c.Load()
	require.Equal(t, fetch.Loading, c.State())
	require.Contains(t, c.View(), "Loading…")

	pumpUnit(t, c, cmd)
	require.Equal(t, fetch.Success, c.State())
	require.Len(t, c.Visible(), len(cat.products))
	view := c.View()
	require.Contains(t, view, "Fjallraven Backpack")
	require.Contains(t, view, "R$ 109.95")
	require.Contains(t, view, "#1 https://img/1.jpg")
	require.NotContains(t, view, "Loading")
	require.Equal(t, []string{"products"}, cat.Calls())
}

func TestCollectionFetcherFailureShowsOnlyError(t *testing.T) {
	cat := newStubCatalog()
	cat.productsErr = &catalog.StatusError{Method: "GET", Path: "/products", Code: 503}
	c := NewCollectionFetcher(context.Background(), "Products", cat.Products, "R$")

	pumpUnit(t, c, c.Load())
	require.Equal(t, fetch.Failed, c.State())
	require.Empty(t, c.Visible())
	view := c.View()
	require.Contains(t, view, "unexpected status 503")
	require.NotContains(t, view, "No products.")
	require.NotContains(t, view, "R$")
}

func TestCollectionFetcherEmptyCollection(t *testing.T) {
	cat := newStubCatalog()
	cat.products = nil
	c := NewCollectionFetcher(context.Background(), "Products", cat.Products, "R$")

	pumpUnit(t, c, c.Init())
	require.Equal(t, fetch.Success, c.State())
	require.Nil(t, c.req.Err())
	require.Contains(t, c.View(), "No products.")
}

func TestCollectionFetcherReloadClearsFailure(t *testing.T) {
	cat := newStubCatalog()
	cat.productsErr = errors.New("connection refused")
	c := NewCollectionFetcher(context.Background(), "Products", cat.Products, "R$")
	pumpUnit(t, c, c.Load())
	require.Equal(t, fetch.Failed, c.State())

	cat.productsErr = nil
	cmd := c.Load()
	require.Nil(t, c.req.Err())
	require.NotContains(t, c.View(), "connection refused")
	pumpUnit(t, c, cmd)
	require.Equal(t, fetch.Success, c.State())
}

func TestCollectionFetcherIgnoresStaleGeneration(t *testing.T) {
	batches := [][]catalog.Product{
		{{ID: 1, Title: "first"}},
		{{ID: 2, Title: "second"}},
	}
	n := 0
	load := func(context.Context) ([]catalog.Product, error) {
		ps := batches[n]
		n++
		return ps, nil
	}
	c := NewCollectionFetcher(context.Background(), "Products", load, "R$")

	first := c.Load()
	second := c.Load()
	older, newer := first(), second()

	c.Update(older)
	require.Equal(t, fetch.Loading, c.State())
	c.Update(newer)
	require.Equal(t, fetch.Success, c.State())
	require.Equal(t, "second", c.Visible()[0].Title)

	c.Update(older)
	require.Equal(t, "second", c.Visible()[0].Title)
}

func TestCollectionFetcherIgnoresOtherInstance(t *testing.T) {
	cat := newStubCatalog()
	a := NewCollectionFetcher(context.Background(), "A", cat.Products, "R$")
	b := NewCollectionFetcher(context.Background(), "B", cat.Products, "R$")

	msg := a.Load()()
	b.Load()
	b.Update(msg)
	require.Equal(t, fetch.Loading, b.State())
	a.Update(msg)
	require.Equal(t, fetch.Success, a.State())
}

func TestCollectionFetcherUnmountCancelsRead(t *testing.T) {
	var seen context.Context
	load := func(ctx context.Context) ([]catalog.Product, error) {
		seen = ctx
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := NewCollectionFetcher(context.Background(), "Products", load, "R$")
	cmd := c.Load()
	c.Unmount()

	msg := cmd()
	require.ErrorIs(t, seen.Err(), context.Canceled)
	require.ErrorIs(t, msg.(productsMsg).err, context.Canceled)
}

func TestRenderGridColumns(t *testing.T) {
	ps := []catalog.Product{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}
	wide := renderGrid(ps, "$", 3*cardWidth)
	narrow := renderGrid(ps, "$", cardWidth)
	require.Less(t, countLines(wide), countLines(narrow))
	require.Equal(t, "$ 3.50", formatPrice("$", 3.5))
	require.Equal(t, "12.00", formatPrice("", 12))
}

func countLines(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
