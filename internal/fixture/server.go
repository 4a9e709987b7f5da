// Package fixture serves an offline copy of the catalog API from embedded
// JSON. It backs `storefront fixtures serve` and the HTTP tests.
package fixture

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jask/storefront/internal/catalog"
)

//go:embed data/*.json
var files embed.FS

// Data is the catalog content served by the router.
type Data struct {
	Products []catalog.Product
	Users    []catalog.User
}

// Load decodes the embedded fixtures.
func Load() (Data, error) {
	var d Data
	if err := decodeFile("data/products.json", &d.Products); err != nil {
		return Data{}, err
	}
	if err := decodeFile("data/users.json", &d.Users); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Categories returns the distinct product categories, sorted like the public API.
func (d Data) Categories() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range d.Products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// NewRouter mounts the catalog routes. Extra middleware runs before every handler.
func NewRouter(d Data, middleware ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware...)

	r.Get("/products", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Products)
	})
	r.Get("/products/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Categories())
	})
	r.Get("/products/category/{category}", func(w http.ResponseWriter, r *http.Request) {
		category, err := url.PathUnescape(chi.URLParam(r, "category"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad category"})
			return
		}
		out := []catalog.Product{}
		for _, p := range d.Products {
			if p.Category == category {
				out = append(out, p)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Get("/users", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, d.Users)
	})
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be numeric"})
			return
		}
		for _, u := range d.Users {
			if u.ID == id {
				writeJSON(w, http.StatusOK, u)
				return
			}
		}
		// the public API answers unknown ids with 200 and a null body
		writeJSON(w, http.StatusOK, nil)
	})
	return r
}

func decodeFile(name string, target any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("fixture: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("fixture: decode %s: %w", name, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
