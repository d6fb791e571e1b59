package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopsync/internal/core/cache"
	"shopsync/internal/domain"
	"shopsync/internal/notify"
	"shopsync/internal/remote"
	"shopsync/pkg/utils"
)

// Products keeps the local catalog reconciled with the remote one. The scope
// of a collection fetch is a category ("" = whole catalog).
type Products struct {
	coord    *Coordinator[domain.Product, string, string]
	repo     domain.ProductRepository
	remote   *remote.Products
	external *remote.External
	cache    *cache.Cache
	notifier notify.Notifier
	log      *zap.Logger
}

func NewProducts(
	repo domain.ProductRepository,
	rp *remote.Products,
	ext *remote.External,
	c *cache.Cache,
	n notify.Notifier,
	log *zap.Logger,
) *Products {
	s := &Products{repo: repo, remote: rp, external: ext, cache: c, notifier: n, log: log}
	s.coord = NewCoordinator(Config[domain.Product, string, string]{
		Entity: "product",
		Log:    log,
		Remote: Endpoints[domain.Product, string, string]{
			List:   rp.List,
			Get:    rp.Get,
			Create: rp.Create,
			Update: rp.Update,
			Delete: rp.Delete,
		},
		Store: Store[domain.Product, string, string]{
			Upsert: repo.Upsert,
			Get:    repo.FindByID,
			List: func(ctx context.Context, category string) ([]domain.Product, error) {
				return repo.List(ctx, domain.ProductFilter{Category: category, ActiveOnly: true})
			},
			Delete: repo.Delete,
			ListPending: func(ctx context.Context, _ string) ([]domain.Product, error) {
				return repo.ListPending(ctx)
			},
		},
		Key:        func(p *domain.Product) string { return p.ID },
		KeyString:  func(id string) string { return "product/" + id },
		Pending:    func(p *domain.Product) bool { return p.Pending },
		SetPending: func(p *domain.Product, v bool) { p.Pending = v },
	})
	return s
}

// Refresh pulls the remote catalog (optionally one category) and serves the
// active local rows; it never fails on remote unavailability.
func (s *Products) Refresh(ctx context.Context, category string) ([]domain.Product, error) {
	return s.coord.FetchCollection(ctx, category)
}

func (s *Products) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.coord.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		// Inactive products never reach catalog-facing reads.
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Products) validate(p *domain.Product) error {
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.Price < 0 {
		return errors.New("product price must not be negative")
	}
	if p.Stock < 0 {
		return errors.New("product stock must not be negative")
	}
	if len(p.Sizes) == 0 {
		return errors.New("product needs at least one size")
	}
	return nil
}

func (s *Products) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}
	p.Active = true

	out, err := s.coord.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.notifier.ProductCreated(ctx, out)
	return out, nil
}

func (s *Products) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	out, err := s.coord.Update(ctx, p.ID, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

func (s *Products) Delete(ctx context.Context, id string) error {
	if err := s.coord.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ImportExternal pulls the public feed and upserts each mapped product
// locally. The feed is read-only; imported rows never flush back.
func (s *Products) ImportExternal(ctx context.Context) (int, error) {
	const op = "sync.Products.ImportExternal"

	eps, err := s.external.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n := 0
	for _, ep := range eps {
		p := ep.AsProduct()
		if err := s.repo.Upsert(ctx, &p); err != nil {
			return n, fmt.Errorf("%s: %w", op, err)
		}
		n++
	}
	s.invalidate(ctx)
	s.log.Info("external catalog imported", zap.Int("count", n))
	return n, nil
}

const categoriesCacheKey = "catalog:categories"

func (s *Products) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, categoriesCacheKey)
	}
}
