// Package query is the read-only filtering layer over whatever the local
// store currently holds. No remote calls, no side effects.
package query

import (
	"context"
	"strings"
	"time"

	"shopsync/internal/core/cache"
	"shopsync/internal/domain"
)

// Matches is the catalog predicate: active rows only, category equality, and
// a case-insensitive substring match over name OR description; category and
// text combine with AND when both are set.
func Matches(p *domain.Product, f domain.ProductFilter) bool {
	if !p.Active {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		needle := strings.ToLower(q)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

// Filter applies Matches over a slice.
func Filter(ps []domain.Product, f domain.ProductFilter) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for i := range ps {
		if Matches(&ps[i], f) {
			out = append(out, ps[i])
		}
	}
	return out
}

// Catalog serves filtered reads from the local product rows. The cache is
// optional; without it Categories goes straight to the store.
type Catalog struct {
	products domain.ProductRepository
	cache    *cache.Cache
}

func NewCatalog(products domain.ProductRepository, c *cache.Cache) *Catalog {
	return &Catalog{products: products, cache: c}
}

func (c *Catalog) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	ps, err := c.products.List(ctx, domain.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return Filter(ps, f), nil
}

const categoriesCacheKey = "catalog:categories"

func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	if c.cache == nil {
		return c.products.Categories(ctx)
	}
	return cache.GetOrLoadJSON(c.cache, ctx, categoriesCacheKey, 5*time.Minute,
		func(ctx context.Context) ([]string, error) {
			return c.products.Categories(ctx)
		})
}
