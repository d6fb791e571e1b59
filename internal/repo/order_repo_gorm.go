package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopsync/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Upsert(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var os []domain.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).Order("created_at DESC").Find(&os).Error
	return os, err
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	var os []domain.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&os).Error
	return os, err
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{}).Error
}

func (r *OrderRepo) ListPending(ctx context.Context, userID string) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Where("pending = ?", true)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var os []domain.Order
	err := q.Find(&os).Error
	return os, err
}
