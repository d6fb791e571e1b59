package domain

import "context"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// transitions: PENDING->CONFIRMED->SHIPPED->DELIVERED, PENDING->CANCELLED.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped},
	StatusShipped:   {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

// OrderItem is a value snapshot captured at checkout, never re-derived from
// live product state.
type OrderItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	ProductImage string  `json:"productImage"`
	SelectedSize string  `json:"selectedSize"`
	Quantity     int     `json:"quantity"`
}

type Order struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	UserID          string      `gorm:"size:36;index" json:"userId"`
	Items           []OrderItem `gorm:"serializer:json;type:text" json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          OrderStatus `gorm:"size:16" json:"status"`
	CreatedAt       int64       `json:"createdAt"`
	ShippingAddress string      `gorm:"size:255" json:"shippingAddress"`
	Notes           string      `gorm:"size:512" json:"notes"`

	Pending bool `gorm:"index" json:"-"`
}

func (Order) TableName() string { return "orders" }

type OrderRepository interface {
	Upsert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Delete(ctx context.Context, id string) error
	ListPending(ctx context.Context, userID string) ([]Order, error)
}
