package remote

import (
	"context"
	"net/http"
	"net/url"

	"shopsync/internal/domain"
)

type Products struct{ c *Client }

func NewProducts(c *Client) *Products { return &Products{c: c} }

// List returns the catalog, optionally narrowed to a category.
func (p *Products) List(ctx context.Context, category string) ([]domain.Product, error) {
	path := "/api/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out []domain.Product
	if err := p.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Products) Get(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodGet, "/api/products/"+pathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Create(ctx context.Context, in *domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodPost, "/api/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Update(ctx context.Context, id string, in *domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := p.c.do(ctx, http.MethodPut, "/api/products/"+pathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.c.do(ctx, http.MethodDelete, "/api/products/"+pathEscape(id), nil, nil)
}
