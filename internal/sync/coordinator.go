// Package sync keeps the local store reconciled with the remote service.
//
// Reads are sync-then-serve: best-effort a remote refresh, then always answer
// from the local store. Writes are remote-first with a local fallback; rows
// written through the fallback are marked pending and pushed back to the
// remote before the next pull, so offline edits are never silently reverted.
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopsync/internal/domain"
	"shopsync/internal/remote"
)

// Endpoints are the remote CRUD calls for one entity kind. Unused calls may be
// left nil.
type Endpoints[E any, K comparable, S any] struct {
	List   func(ctx context.Context, scope S) ([]E, error)
	Get    func(ctx context.Context, key K) (*E, error)
	Create func(ctx context.Context, e *E) (*E, error)
	Update func(ctx context.Context, key K, e *E) (*E, error)
	Delete func(ctx context.Context, key K) error
}

// Store is the local persistence surface for one entity kind. Its errors are
// fatal to the operation; there is nothing to fall back to beneath it.
type Store[E any, K comparable, S any] struct {
	Upsert      func(ctx context.Context, e *E) error
	Get         func(ctx context.Context, key K) (*E, error)
	List        func(ctx context.Context, scope S) ([]E, error)
	Delete      func(ctx context.Context, key K) error
	ListPending func(ctx context.Context, scope S) ([]E, error)
}

// Config wires one entity kind into a Coordinator.
type Config[E any, K comparable, S any] struct {
	Entity string
	Log    *zap.Logger
	Remote Endpoints[E, K, S]
	Store  Store[E, K, S]

	Key        func(e *E) K
	KeyString  func(k K) string
	Pending    func(e *E) bool
	SetPending func(e *E, v bool)
}

// Coordinator holds no entity state of its own; the local store is the single
// shared mutable resource.
type Coordinator[E any, K comparable, S any] struct {
	cfg   Config[E, K, S]
	locks *keyLock
}

func NewCoordinator[E any, K comparable, S any](cfg Config[E, K, S]) *Coordinator[E, K, S] {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Coordinator[E, K, S]{cfg: cfg, locks: newKeyLock()}
}

func (c *Coordinator[E, K, S]) lock(k K) func() {
	return c.locks.Lock(c.cfg.KeyString(k))
}

// FetchCollection refreshes the scope from the remote and serves the local
// store. It never fails on remote unavailability; a remote failure degrades to
// whatever the store already holds. Each pulled row is upserted independently,
// so a mid-list failure leaves earlier rows applied.
func (c *Coordinator[E, K, S]) FetchCollection(ctx context.Context, scope S) ([]E, error) {
	const op = "sync.FetchCollection"

	c.Flush(ctx, scope)

	items, err := c.cfg.Remote.List(ctx, scope)
	observeRemote(c.cfg.Entity, "list", err)
	if err != nil {
		c.cfg.Log.Debug("serving local after remote list failure",
			zap.String("entity", c.cfg.Entity), zap.Error(err))
	} else {
		for i := range items {
			e := &items[i]
			c.cfg.SetPending(e, false)
			if err := c.reconcile(ctx, e); err != nil {
				return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, err)
			}
		}
	}

	out, err := c.cfg.Store.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, err)
	}
	return out, nil
}

// reconcile applies one remote row unless the local copy has diverged ahead of
// the remote (pending); diverged rows keep their local value until flushed.
func (c *Coordinator[E, K, S]) reconcile(ctx context.Context, e *E) error {
	k := c.cfg.Key(e)
	unlock := c.lock(k)
	defer unlock()

	cur, err := c.cfg.Store.Get(ctx, k)
	if err != nil {
		return err
	}
	if cur != nil && c.cfg.Pending(cur) {
		return nil
	}
	return c.cfg.Store.Upsert(ctx, e)
}

// FetchOne prefers the remote representation and caches it; on any remote
// failure it falls back to the local row. ErrNotFound means both sides missed.
func (c *Coordinator[E, K, S]) FetchOne(ctx context.Context, key K) (*E, error) {
	const op = "sync.FetchOne"

	e, err := c.cfg.Remote.Get(ctx, key)
	observeRemote(c.cfg.Entity, "get", err)
	if err == nil {
		c.cfg.SetPending(e, false)
		if uerr := c.reconcile(ctx, e); uerr != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, uerr)
		}
		return e, nil
	}

	local, lerr := c.cfg.Store.Get(ctx, key)
	if lerr != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, lerr)
	}
	if local == nil {
		return nil, domain.ErrNotFound
	}
	return local, nil
}

// Create attempts the remote write and stores the remote-returned row (the
// remote owns generated fields). On transient failure the input row is stored
// pending; a rejection propagates untouched.
func (c *Coordinator[E, K, S]) Create(ctx context.Context, e *E) (*E, error) {
	const op = "sync.Create"

	unlock := c.lock(c.cfg.Key(e))
	defer unlock()

	out, err := c.cfg.Remote.Create(ctx, e)
	observeRemote(c.cfg.Entity, "create", err)
	switch {
	case err == nil:
		c.cfg.SetPending(out, false)
		e = out
	case remote.IsUnavailable(err):
		localFallbacks.WithLabelValues(c.cfg.Entity, "create").Inc()
		c.cfg.Log.Warn("create applied locally, remote unreachable",
			zap.String("entity", c.cfg.Entity), zap.Error(err))
		c.cfg.SetPending(e, true)
	default:
		return nil, err
	}

	if uerr := c.cfg.Store.Upsert(ctx, e); uerr != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, uerr)
	}
	return e, nil
}

// Update mirrors Create for in-place writes.
func (c *Coordinator[E, K, S]) Update(ctx context.Context, key K, e *E) (*E, error) {
	const op = "sync.Update"

	unlock := c.lock(key)
	defer unlock()

	out, err := c.cfg.Remote.Update(ctx, key, e)
	observeRemote(c.cfg.Entity, "update", err)
	switch {
	case err == nil:
		c.cfg.SetPending(out, false)
		e = out
	case remote.IsUnavailable(err):
		localFallbacks.WithLabelValues(c.cfg.Entity, "update").Inc()
		c.cfg.SetPending(e, true)
	default:
		return nil, err
	}

	if uerr := c.cfg.Store.Upsert(ctx, e); uerr != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, uerr)
	}
	return e, nil
}

// Delete removes the local row whatever the remote said; a missing row is a
// no-op, not an error. Only a local storage failure propagates.
func (c *Coordinator[E, K, S]) Delete(ctx context.Context, key K) error {
	const op = "sync.Delete"

	unlock := c.lock(key)
	defer unlock()

	err := c.cfg.Remote.Delete(ctx, key)
	observeRemote(c.cfg.Entity, "delete", err)
	if err != nil && remote.IsUnavailable(err) {
		localFallbacks.WithLabelValues(c.cfg.Entity, "delete").Inc()
	}

	if derr := c.cfg.Store.Delete(ctx, key); derr != nil {
		return fmt.Errorf("%s: %s: %w", op, c.cfg.Entity, derr)
	}
	return nil
}

// Flush best-efforts every pending row back to the remote: absolute update
// first, create when the remote has never seen the row. Rows that still fail
// stay pending and keep shadowing remote pulls.
func (c *Coordinator[E, K, S]) Flush(ctx context.Context, scope S) {
	if c.cfg.Store.ListPending == nil || c.cfg.Remote.Update == nil {
		return
	}
	rows, err := c.cfg.Store.ListPending(ctx, scope)
	if err != nil {
		c.cfg.Log.Warn("listing pending rows failed",
			zap.String("entity", c.cfg.Entity), zap.Error(err))
		return
	}
	for i := range rows {
		e := &rows[i]
		k := c.cfg.Key(e)
		unlock := c.lock(k)

		out, err := c.cfg.Remote.Update(ctx, k, e)
		if remote.IsNotFound(err) && c.cfg.Remote.Create != nil {
			out, err = c.cfg.Remote.Create(ctx, e)
		}
		if err != nil {
			pendingFlushed.WithLabelValues(c.cfg.Entity, "error").Inc()
			unlock()
			if remote.IsUnavailable(err) {
				break // remote is down, no point trying the rest
			}
			continue
		}
		c.cfg.SetPending(out, false)
		if uerr := c.cfg.Store.Upsert(ctx, out); uerr != nil {
			c.cfg.Log.Warn("storing flushed row failed",
				zap.String("entity", c.cfg.Entity), zap.Error(uerr))
		} else {
			pendingFlushed.WithLabelValues(c.cfg.Entity, "ok").Inc()
		}
		unlock()
	}
}
