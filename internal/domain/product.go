package domain

import "context"

type Product struct {
	ID          string   `gorm:"primaryKey;size:36" json:"id"`
	Name        string   `gorm:"size:191" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       float64  `json:"price"`
	Category    string   `gorm:"index;size:64" json:"category"`
	Sizes       []string `gorm:"serializer:json;type:text" json:"sizes"`
	Images      []string `gorm:"serializer:json;type:text" json:"images"`
	Stock       int      `json:"stock"`
	Active      bool     `gorm:"index" json:"isActive"`
	// Epoch millis, assigned client-side at creation and kept stable across
	// remote and local copies.
	CreatedAt int64 `json:"createdAt"`

	Pending bool `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

// Purchasable products must offer at least one size.
func (p *Product) Purchasable() bool {
	return p.Active && p.Stock > 0 && len(p.Sizes) > 0
}

// ProductFilter narrows catalog reads. Zero value means "all active".
type ProductFilter struct {
	Category   string
	Query      string
	ActiveOnly bool
}

type ProductRepository interface {
	Upsert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]Product, error)
}
