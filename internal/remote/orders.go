package remote

import (
	"context"
	"net/http"

	"shopsync/internal/domain"
)

type Orders struct{ c *Client }

func NewOrders(c *Client) *Orders { return &Orders{c: c} }

func (r *Orders) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.c.do(ctx, http.MethodGet, "/api/orders/user/"+pathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Orders) ListAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.c.do(ctx, http.MethodGet, "/api/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Orders) Get(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := r.c.do(ctx, http.MethodGet, "/api/orders/"+pathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Orders) Create(ctx context.Context, in *domain.Order) (*domain.Order, error) {
	var out domain.Order
	if err := r.c.do(ctx, http.MethodPost, "/api/orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Orders) Update(ctx context.Context, id string, in *domain.Order) (*domain.Order, error) {
	var out domain.Order
	if err := r.c.do(ctx, http.MethodPut, "/api/orders/"+pathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Orders) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/api/orders/"+pathEscape(id), nil, nil)
}
