package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopsync/internal/domain"
	"shopsync/internal/remote"
)

// Cart owns the quantity-accumulation merge for the (user, product, size)
// natural key. Add accumulates, SetQuantity overwrites, zero deletes.
type Cart struct {
	repo   domain.CartRepository
	remote *remote.Cart
	locks  *keyLock
	log    *zap.Logger
}

func NewCart(repo domain.CartRepository, rc *remote.Cart, log *zap.Logger) *Cart {
	return &Cart{repo: repo, remote: rc, locks: newKeyLock(), log: log}
}

func (s *Cart) lock(k domain.CartKey) func() {
	return s.locks.Lock("cart/" + k.String())
}

// Items flushes pending rows, best-efforts a remote pull and serves the local
// cart. Pulled rows never overwrite rows that are still pending.
func (s *Cart) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const op = "sync.Cart.Items"

	s.Flush(ctx, userID)

	items, err := s.remote.List(ctx, userID)
	observeRemote("cart", "list", err)
	if err != nil {
		s.log.Debug("serving local cart after remote list failure", zap.Error(err))
	} else {
		for i := range items {
			it := &items[i]
			it.Pending = false
			if err := s.reconcile(ctx, it); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *Cart) reconcile(ctx context.Context, it *domain.CartItem) error {
	unlock := s.lock(it.Key())
	defer unlock()

	cur, err := s.repo.FindByKey(ctx, it.Key())
	if err != nil {
		return err
	}
	if cur != nil && cur.Pending {
		return nil
	}
	return s.repo.Upsert(ctx, it)
}

// Add puts quantity into the cart, accumulating onto any existing row for the
// same key. The remote accumulates on its side; when it cannot be reached (or
// reports a conflict) the accumulation is computed here against the local row
// under the key lock, and the result stays pending until the next flush.
func (s *Cart) Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	const op = "sync.Cart.Add"

	if item.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	unlock := s.lock(item.Key())
	defer unlock()

	cur, lerr := s.repo.FindByKey(ctx, item.Key())
	if lerr != nil {
		return nil, fmt.Errorf("%s: %w", op, lerr)
	}
	if cur != nil && cur.Pending {
		return s.addOntoPending(ctx, cur, item.Quantity)
	}

	out, err := s.remote.Add(ctx, item)
	observeRemote("cart", "add", err)
	switch {
	case err == nil:
		out.Pending = false
		if uerr := s.repo.Upsert(ctx, out); uerr != nil {
			return nil, fmt.Errorf("%s: %w", op, uerr)
		}
		return out, nil
	case remote.IsRejection(err) && !remote.IsConflict(err):
		return nil, err
	}

	localFallbacks.WithLabelValues("cart", "add").Inc()
	merged := *item
	if cur != nil {
		// Accumulate, never replace. The stored snapshot fields keep the
		// price frozen at first add.
		merged = *cur
		merged.Quantity = cur.Quantity + item.Quantity
	}
	merged.Pending = true
	if uerr := s.repo.Upsert(ctx, &merged); uerr != nil {
		return nil, fmt.Errorf("%s: %w", op, uerr)
	}
	return &merged, nil
}

// addOntoPending folds a new quantity onto a row the remote has not confirmed
// yet. A remote-side accumulate would lose the un-flushed part, so the
// combined value goes out as an absolute set, re-added when the remote has
// never seen the row. Caller holds the key lock.
func (s *Cart) addOntoPending(ctx context.Context, cur *domain.CartItem, qty int) (*domain.CartItem, error) {
	const op = "sync.Cart.Add"

	merged := *cur
	merged.Quantity = cur.Quantity + qty

	out, err := s.remote.SetQuantity(ctx, merged.Key(), merged.Quantity)
	if remote.IsNotFound(err) {
		out, err = s.remote.Add(ctx, &merged)
	}
	observeRemote("cart", "add", err)
	switch {
	case err == nil:
		out.Pending = false
		if uerr := s.repo.Upsert(ctx, out); uerr != nil {
			return nil, fmt.Errorf("%s: %w", op, uerr)
		}
		return out, nil
	case remote.IsRejection(err) && !remote.IsConflict(err):
		return nil, err
	}

	localFallbacks.WithLabelValues("cart", "add").Inc()
	merged.Pending = true
	if uerr := s.repo.Upsert(ctx, &merged); uerr != nil {
		return nil, fmt.Errorf("%s: %w", op, uerr)
	}
	return &merged, nil
}

// SetQuantity overwrites the quantity for the key; zero or less deletes the
// row. No accumulation on this path.
func (s *Cart) SetQuantity(ctx context.Context, k domain.CartKey, qty int) (*domain.CartItem, error) {
	const op = "sync.Cart.SetQuantity"

	if qty <= 0 {
		if err := s.Remove(ctx, k); err != nil {
			return nil, err
		}
		return nil, nil
	}

	unlock := s.lock(k)
	defer unlock()

	out, err := s.remote.SetQuantity(ctx, k, qty)
	observeRemote("cart", "set_quantity", err)
	switch {
	case err == nil:
		out.Pending = false
		if uerr := s.repo.Upsert(ctx, out); uerr != nil {
			return nil, fmt.Errorf("%s: %w", op, uerr)
		}
		return out, nil
	case remote.IsRejection(err) && !remote.IsNotFound(err):
		return nil, err
	}

	localFallbacks.WithLabelValues("cart", "set_quantity").Inc()
	cur, lerr := s.repo.FindByKey(ctx, k)
	if lerr != nil {
		return nil, fmt.Errorf("%s: %w", op, lerr)
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	cur.Quantity = qty
	cur.Pending = true
	if uerr := s.repo.Upsert(ctx, cur); uerr != nil {
		return nil, fmt.Errorf("%s: %w", op, uerr)
	}
	return cur, nil
}

// Remove deletes the row locally whatever the remote said; removing an absent
// key is a no-op.
func (s *Cart) Remove(ctx context.Context, k domain.CartKey) error {
	const op = "sync.Cart.Remove"

	unlock := s.lock(k)
	defer unlock()

	err := s.remote.Remove(ctx, k)
	observeRemote("cart", "remove", err)
	if err != nil && remote.IsUnavailable(err) {
		localFallbacks.WithLabelValues("cart", "remove").Inc()
	}
	if derr := s.repo.DeleteByKey(ctx, k); derr != nil {
		return fmt.Errorf("%s: %w", op, derr)
	}
	return nil
}

// Clear empties the user's cart; like Remove, the local clear is never
// blocked by the network.
func (s *Cart) Clear(ctx context.Context, userID string) error {
	const op = "sync.Cart.Clear"

	err := s.remote.Clear(ctx, userID)
	observeRemote("cart", "clear", err)
	if err != nil && remote.IsUnavailable(err) {
		localFallbacks.WithLabelValues("cart", "clear").Inc()
	}
	if derr := s.repo.Clear(ctx, userID); derr != nil {
		return fmt.Errorf("%s: %w", op, derr)
	}
	return nil
}

// Flush pushes pending rows with an absolute quantity update so the remote
// converges on the locally accumulated value; rows the remote has never seen
// are re-added with their frozen snapshot.
func (s *Cart) Flush(ctx context.Context, userID string) {
	rows, err := s.repo.ListPending(ctx, userID)
	if err != nil {
		s.log.Warn("listing pending cart rows failed", zap.Error(err))
		return
	}
	for i := range rows {
		it := &rows[i]
		k := it.Key()
		unlock := s.lock(k)

		out, err := s.remote.SetQuantity(ctx, k, it.Quantity)
		if remote.IsNotFound(err) {
			out, err = s.remote.Add(ctx, it)
		}
		if err != nil {
			pendingFlushed.WithLabelValues("cart", "error").Inc()
			unlock()
			if remote.IsUnavailable(err) {
				break
			}
			continue
		}
		out.Pending = false
		if uerr := s.repo.Upsert(ctx, out); uerr != nil {
			s.log.Warn("storing flushed cart row failed", zap.Error(uerr))
		} else {
			pendingFlushed.WithLabelValues("cart", "ok").Inc()
		}
		unlock()
	}
}

// Total sums price*quantity over the given rows; prices are the frozen
// snapshots, not live product state.
func Total(items []domain.CartItem) float64 {
	var t float64
	for _, it := range items {
		t += it.ProductPrice * float64(it.Quantity)
	}
	return t
}

// Count sums the quantities over the given rows.
func Count(items []domain.CartItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
