package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/fixture"
)

type recordedRequest struct {
	method string
	path   string
	raw    string
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.reqs = append(r.reqs, recordedRequest{method: req.Method, path: req.URL.Path, raw: req.URL.EscapedPath()})
		r.mu.Unlock()
		next.ServeHTTP(w, req)
	})
}

type observation struct {
	route string
	code  int
}

type observerStub struct {
	mu  sync.Mutex
	got []observation
}

func (o *observerStub) ObserveRequest(route string, code int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{route: route, code: code})
}

func newFixtureClient(t *testing.T, opts ...catalog.Option) (*catalog.Client, fixture.Data, *recorder) {
	t.Helper()
	data, err := fixture.Load()
	require.NoError(t, err)
	rec := &recorder{}
	srv := httptest.NewServer(fixture.NewRouter(data, rec.middleware))
	t.Cleanup(srv.Close)

	c, err := catalog.New(srv.URL, opts...)
	require.NoError(t, err)
	return c, data, rec
}

func TestProducts(t *testing.T) {
	t.Parallel()
	c, data, rec := newFixtureClient(t)

	got, err := c.Products(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(data.Products, got); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []recordedRequest{{method: http.MethodGet, path: "/products", raw: "/products"}}, rec.reqs)
}

func TestProductsInCategoryEscapesLabel(t *testing.T) {
	t.Parallel()
	c, _, rec := newFixtureClient(t)

	got, err := c.ProductsInCategory(context.Background(), "men's clothing")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		require.Equal(t, "men's clothing", p.Category)
	}
	require.Len(t, rec.reqs, 1)
	require.Equal(t, "/products/category/men's clothing", rec.reqs[0].path)
	require.Equal(t, "/products/category/men%27s%20clothing", rec.reqs[0].raw)
}

func TestProductsInCategoryDotLabelStaysOneSegment(t *testing.T) {
	t.Parallel()
	c, _, rec := newFixtureClient(t)

	got, err := c.ProductsInCategory(context.Background(), "..")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Len(t, rec.reqs, 1)
	require.Equal(t, "/products/category/..", rec.reqs[0].path)
	require.Equal(t, "/products/category/%2E%2E", rec.reqs[0].raw)
}

func TestProductsInCategoryElectronics(t *testing.T) {
	t.Parallel()
	c, _, rec := newFixtureClient(t)

	got, err := c.ProductsInCategory(context.Background(), "electronics")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "/products/category/electronics", rec.reqs[0].path)
}

func TestCategories(t *testing.T) {
	t.Parallel()
	c, _, _ := newFixtureClient(t)

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"electronics", "jewelery", "men's clothing", "women's clothing"}, got)
}

func TestUsersAndUser(t *testing.T) {
	t.Parallel()
	c, _, rec := newFixtureClient(t)

	users, err := c.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 4)

	u, err := c.User(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "kevin ryan", u.FullName())
	require.Equal(t, "kevin@gmail.com", u.Email)
	require.Equal(t, "Cullman", u.Address.City)
	require.Equal(t, "/users/3", rec.reqs[1].path)

	_, err = c.User(context.Background(), 99)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	obs := &observerStub{}
	c, err := catalog.New(srv.URL, catalog.WithObserver(obs))
	require.NoError(t, err)

	_, err = c.Products(context.Background())
	var se *catalog.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.Code)
	require.Equal(t, "/products", se.Path)
	require.Contains(t, err.Error(), "503 Service Unavailable")
	require.Equal(t, []observation{{route: catalog.RouteProducts, code: 503}}, obs.got)
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	t.Parallel()
	data, err := fixture.Load()
	require.NoError(t, err)
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", fixture.NewRouter(data, rec.middleware)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := catalog.New(srv.URL + "/api")
	require.NoError(t, err)
	got, err := c.ProductsInCategory(context.Background(), "electronics")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "/products/category/electronics", rec.reqs[0].path)
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	t.Cleanup(srv.Close)
	c, err := catalog.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Products(context.Background())
	require.ErrorContains(t, err, "catalog: decode /products")
}

func TestDuplicateIDs(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"a"},{"id":1,"title":"b"}]`))
	}))
	t.Cleanup(srv.Close)
	c, err := catalog.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Products(context.Background())
	require.ErrorIs(t, err, catalog.ErrDuplicateID)
	_, err = c.Users(context.Background())
	require.ErrorIs(t, err, catalog.ErrDuplicateID)
}

func TestEmptyCollection(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	c, err := catalog.New(srv.URL)
	require.NoError(t, err)

	got, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestTimeoutAndObserverOnTransportError(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	obs := &observerStub{}
	c, err := catalog.New(srv.URL, catalog.WithTimeout(50*time.Millisecond), catalog.WithObserver(obs))
	require.NoError(t, err)

	_, err = c.Categories(context.Background())
	require.Error(t, err)
	require.Equal(t, []observation{{route: catalog.RouteProductCategories, code: 0}}, obs.got)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := catalog.New("fakestoreapi.com")
	require.Error(t, err)
}
