package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Route labels used for metrics. They are templates, never raw paths.
const (
	RouteProducts          = "/products"
	RouteProductCategories = "/products/categories"
	RouteProductsCategory  = "/products/category/{category}"
	RouteUsers             = "/users"
	RouteUser              = "/users/{id}"
)

var (
	// ErrDuplicateID is returned when a collection response repeats a record id.
	ErrDuplicateID = errors.New("catalog: duplicate record id")
	// ErrNotFound is returned when a single-record read comes back empty.
	ErrNotFound = errors.New("catalog: record not found")
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: %s %s: unexpected status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Observer receives one call per completed round trip. code is 0 when the
// request failed before a response arrived.
type Observer interface {
	ObserveRequest(route string, code int, elapsed time.Duration)
}

// Client reads the catalog over HTTP. It never retries.
type Client struct {
	base     *url.URL
	http     *http.Client
	observer Observer
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithObserver reports each round trip to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New returns a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog: base url %q needs scheme and host", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	c := &Client{base: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Products lists every product.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.get(ctx, RouteProducts, c.base.JoinPath("products"), &out); err != nil {
		return nil, err
	}
	if err := uniqueProducts(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsInCategory lists the products of one category. The label is sent
// as a single escaped path segment.
func (c *Client) ProductsInCategory(ctx context.Context, category string) ([]Product, error) {
	var out []Product
	u := c.base.JoinPath("products", "category")
	u.RawPath = u.EscapedPath() + "/" + escapeSegment(category)
	u.Path += "/" + category
	if err := c.get(ctx, RouteProductsCategory, u, &out); err != nil {
		return nil, err
	}
	if err := uniqueProducts(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories lists category labels in server order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, RouteProductCategories, c.base.JoinPath("products", "categories"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists every user.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.get(ctx, RouteUsers, c.base.JoinPath("users"), &out); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(out))
	for _, u := range out {
		if _, ok := seen[u.ID]; ok {
			return nil, fmt.Errorf("%w: user %d", ErrDuplicateID, u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return out, nil
}

// User reads one user by id.
func (c *Client) User(ctx context.Context, id int) (User, error) {
	var out *User
	if err := c.get(ctx, RouteUser, c.base.JoinPath("users", strconv.Itoa(id)), &out); err != nil {
		return User{}, err
	}
	if out == nil || out.ID == 0 {
		return User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return *out, nil
}

func (c *Client) get(ctx context.Context, route string, u *url.URL, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(route, 0, time.Since(start))
		return fmt.Errorf("catalog: GET %s: %w", u.Path, err)
	}
	defer resp.Body.Close()
	c.observe(route, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodGet, Path: u.Path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", u.Path, err)
	}
	return nil
}

func (c *Client) observe(route string, code int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(route, code, elapsed)
	}
}

// escapeSegment escapes s as one path segment. Dot segments are escaped too
// so no path cleaning can resolve them.
func escapeSegment(s string) string {
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return url.PathEscape(s)
}

func uniqueProducts(ps []Product) error {
	seen := make(map[int]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: product %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
