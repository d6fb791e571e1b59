package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopsync/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

// Upsert replaces on the (user_id, product_id, selected_size) natural key, so a
// row re-pulled from the remote lands on the existing local row.
func (r *CartRepo) Upsert(ctx context.Context, ci *domain.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "product_id"}, {Name: "selected_size"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"product_name", "product_price", "product_image", "quantity", "pending",
			}),
		}).
		Create(ci).Error
}

func (r *CartRepo) FindByKey(ctx context.Context, k domain.CartKey) (*domain.CartItem, error) {
	var ci domain.CartItem
	err := r.db.WithContext(ctx).
		First(&ci, "user_id = ? AND product_id = ? AND selected_size = ?", k.UserID, k.ProductID, k.Size).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ci, err
}

func (r *CartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, err
}

// DeleteByKey is a no-op when the row is already absent.
func (r *CartRepo) DeleteByKey(ctx context.Context, k domain.CartKey) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND selected_size = ?", k.UserID, k.ProductID, k.Size).
		Delete(&domain.CartItem{}).Error
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}

func (r *CartRepo) ListPending(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND pending = ?", userID, true).Find(&items).Error
	return items, err
}
