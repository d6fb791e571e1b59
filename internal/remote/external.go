package remote

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shopsync/internal/domain"
)

// ExternalProduct is a row from the public demo product feed.
type ExternalProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

// External imports products from a public feed into local Product rows. It is
// read-only and reuses the same transport and error taxonomy.
type External struct{ c *Client }

func NewExternal(c *Client) *External { return &External{c: c} }

func (e *External) FetchAll(ctx context.Context) ([]ExternalProduct, error) {
	var out []ExternalProduct
	if err := e.c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var defaultSizes = []string{"S", "M", "L", "XL"}

// AsProduct maps a feed row into the local product shape. The feed carries no
// sizes or stock, so imported rows get a default size run and the rating count
// as an approximate stock figure.
func (ep ExternalProduct) AsProduct() domain.Product {
	return domain.Product{
		ID:          "ext-" + strconv.Itoa(ep.ID),
		Name:        ep.Title,
		Description: ep.Description,
		Price:       ep.Price,
		Category:    ep.Category,
		Sizes:       append([]string(nil), defaultSizes...),
		Images:      []string{ep.Image},
		Stock:       ep.Rating.Count,
		Active:      true,
		CreatedAt:   time.Now().UnixMilli(),
	}
}
