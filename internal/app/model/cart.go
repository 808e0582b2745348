package model

import (
	"time"

	"github.com/ikkim/cart-backend/pkg/pricing"
)

// CartItem is one line in the cart. ID comes from the auto-increment key,
// so ids grow monotonically and ordering by id preserves insertion order.
type CartItem struct {
	ID        uint      `gorm:"primarykey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// ToPricing returns the priced view of the line.
func (i CartItem) ToPricing() pricing.Item {
	return pricing.Item{Price: i.Price, Quantity: i.Quantity}
}

// PricingItems converts lines for the pricing engine, keeping their order.
func PricingItems(items []CartItem) []pricing.Item {
	out := make([]pricing.Item, len(items))
	for i, item := range items {
		out[i] = item.ToPricing()
	}
	return out
}
