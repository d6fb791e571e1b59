package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopsync/internal/domain"
	"shopsync/internal/notify"
	"shopsync/internal/remote"
	"shopsync/pkg/utils"
)

// Orders reconciles order history and owns checkout. Orders are value
// snapshots: items and total are fixed at creation and only the status moves.
type Orders struct {
	coord    *Coordinator[domain.Order, string, string]
	repo     domain.OrderRepository
	remote   *remote.Orders
	cart     *Cart
	notifier notify.Notifier
	log      *zap.Logger
}

func NewOrders(
	repo domain.OrderRepository,
	ro *remote.Orders,
	cart *Cart,
	n notify.Notifier,
	log *zap.Logger,
) *Orders {
	s := &Orders{repo: repo, remote: ro, cart: cart, notifier: n, log: log}
	s.coord = NewCoordinator(Config[domain.Order, string, string]{
		Entity: "order",
		Log:    log,
		Remote: Endpoints[domain.Order, string, string]{
			List: func(ctx context.Context, userID string) ([]domain.Order, error) {
				if userID == "" {
					return ro.ListAll(ctx)
				}
				return ro.ListByUser(ctx, userID)
			},
			Get:    ro.Get,
			Create: ro.Create,
			Update: ro.Update,
			Delete: ro.Delete,
		},
		Store: Store[domain.Order, string, string]{
			Upsert: repo.Upsert,
			Get:    repo.FindByID,
			List: func(ctx context.Context, userID string) ([]domain.Order, error) {
				if userID == "" {
					return repo.ListAll(ctx)
				}
				return repo.ListByUser(ctx, userID)
			},
			Delete:      repo.Delete,
			ListPending: repo.ListPending,
		},
		Key:        func(o *domain.Order) string { return o.ID },
		KeyString:  func(id string) string { return "order/" + id },
		Pending:    func(o *domain.Order) bool { return o.Pending },
		SetPending: func(o *domain.Order, v bool) { o.Pending = v },
	})
	return s
}

// History returns the user's orders, newest first, refreshed best-effort.
// An empty userID lists every order (admin view).
func (s *Orders) History(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.coord.FetchCollection(ctx, userID)
}

func (s *Orders) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.coord.FetchOne(ctx, id)
}

// Checkout snapshots the current cart into a PENDING order, creates it
// remote-first, then clears the cart. Item prices come from the cart's frozen
// snapshots, never from live product rows.
func (s *Orders) Checkout(ctx context.Context, userID, shippingAddress, notes string) (*domain.Order, error) {
	const op = "sync.Orders.Checkout"

	items, err := s.cart.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		ID:              utils.NewID(),
		UserID:          userID,
		Items:           make([]domain.OrderItem, 0, len(items)),
		Status:          domain.StatusPending,
		CreatedAt:       time.Now().UnixMilli(),
		ShippingAddress: shippingAddress,
		Notes:           notes,
	}
	for _, it := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			ProductImage: it.ProductImage,
			SelectedSize: it.SelectedSize,
			Quantity:     it.Quantity,
		})
		order.TotalAmount += it.ProductPrice * float64(it.Quantity)
	}

	out, err := s.coord.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.notifier.OrderCreated(ctx, out)
	return out, nil
}

// UpdateStatus moves an order along PENDING->CONFIRMED->SHIPPED->DELIVERED or
// PENDING->CANCELLED; anything else is rejected before touching either store.
func (s *Orders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	const op = "sync.Orders.UpdateStatus"

	if !status.Valid() {
		return nil, domain.ErrInvalidTransition
	}
	cur, err := s.coord.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cur.Status.CanTransition(status) {
		return nil, fmt.Errorf("%s: %s to %s: %w", op, cur.Status, status, domain.ErrInvalidTransition)
	}

	next := *cur
	next.Status = status
	return s.coord.Update(ctx, id, &next)
}

// Cancel is the user-facing transition; it only applies while PENDING.
func (s *Orders) Cancel(ctx context.Context, id, userID string) (*domain.Order, error) {
	cur, err := s.coord.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && cur.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (s *Orders) Delete(ctx context.Context, id string) error {
	return s.coord.Delete(ctx, id)
}
