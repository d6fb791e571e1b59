package domain

import "context"

// CartItem is identified by the (userId, productId, selectedSize) triple; the
// surrogate ID exists only for storage. Name, price and image are frozen at
// add time so later product edits do not rewrite carts.
type CartItem struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	UserID       string  `gorm:"size:36;index;uniqueIndex:idx_cart_key" json:"userId"`
	ProductID    string  `gorm:"size:36;uniqueIndex:idx_cart_key" json:"productId"`
	SelectedSize string  `gorm:"size:16;uniqueIndex:idx_cart_key" json:"selectedSize"`
	ProductName  string  `gorm:"size:191" json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductImage string  `gorm:"size:512" json:"productImage,omitempty"`
	Quantity     int     `json:"quantity"`

	Pending bool `gorm:"index" json:"-"`
}

func (CartItem) TableName() string { return "cart_items" }

func (ci *CartItem) Key() CartKey {
	return CartKey{UserID: ci.UserID, ProductID: ci.ProductID, Size: ci.SelectedSize}
}

// CartKey is the natural key of a cart row.
type CartKey struct {
	UserID    string
	ProductID string
	Size      string
}

func (k CartKey) String() string { return k.UserID + "/" + k.ProductID + "/" + k.Size }

type CartRepository interface {
	Upsert(ctx context.Context, ci *CartItem) error
	FindByKey(ctx context.Context, k CartKey) (*CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]CartItem, error)
	DeleteByKey(ctx context.Context, k CartKey) error
	Clear(ctx context.Context, userID string) error
	ListPending(ctx context.Context, userID string) ([]CartItem, error)
}
