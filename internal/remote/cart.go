package remote

import (
	"context"
	"fmt"
	"net/http"

	"shopsync/internal/domain"
)

type Cart struct{ c *Client }

func NewCart(c *Client) *Cart { return &Cart{c: c} }

func (r *Cart) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	if err := r.c.do(ctx, http.MethodGet, "/api/cart/user/"+pathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add posts the full snapshot; the service accumulates quantity when the
// (user, product, size) row already exists.
func (r *Cart) Add(ctx context.Context, in *domain.CartItem) (*domain.CartItem, error) {
	var out domain.CartItem
	if err := r.c.do(ctx, http.MethodPost, "/api/cart", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type quantityUpdate struct {
	Quantity int `json:"quantity"`
}

// SetQuantity is an absolute set, never an accumulate.
func (r *Cart) SetQuantity(ctx context.Context, k domain.CartKey, qty int) (*domain.CartItem, error) {
	path := fmt.Sprintf("/api/cart/%s/%s/%s",
		pathEscape(k.UserID), pathEscape(k.ProductID), pathEscape(k.Size))
	var out domain.CartItem
	if err := r.c.do(ctx, http.MethodPut, path, quantityUpdate{Quantity: qty}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Cart) Remove(ctx context.Context, k domain.CartKey) error {
	path := fmt.Sprintf("/api/cart/%s/%s/%s",
		pathEscape(k.UserID), pathEscape(k.ProductID), pathEscape(k.Size))
	return r.c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (r *Cart) Clear(ctx context.Context, userID string) error {
	return r.c.do(ctx, http.MethodDelete, "/api/cart/clear/"+pathEscape(userID), nil, nil)
}
