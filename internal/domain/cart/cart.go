// Package cart holds the shopping cart and turns it into orders.
package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Cart is an ordered list of product lines. The zero value is an empty cart.
// A Cart is not safe for concurrent use.
type Cart struct {
	items []model.CartItem
}

// FromItems builds a cart from existing lines, dropping non-positive quantities.
func FromItems(items []model.CartItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.Quantity > 0 {
			c.items = append(c.items, it)
		}
	}
	return c
}

// Add puts one unit of p into the cart, incrementing an existing line.
func (c *Cart) Add(p model.Product) {
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, model.CartItem{Product: p, Quantity: 1})
}

// Remove drops the line for productID.
func (c *Cart) Remove(productID string) {
	out := c.items[:0]
	for _, it := range c.items {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	c.items = out
}

func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the cart lines.
func (c *Cart) Items() []model.CartItem {
	return append([]model.CartItem(nil), c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of price times quantity.
func (c *Cart) Total() float64 {
	var t float64
	for _, it := range c.items {
		t += it.Price * float64(it.Quantity)
	}
	return t
}

// Checkout builds a pending order for userID. The cart is left untouched.
func (c *Cart) Checkout(userID string, now time.Time) (model.Order, error) {
	if userID == "" {
		return model.Order{}, ErrNoUser
	}
	if len(c.items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	return model.Order{
		ID:     NewOrderID(),
		UserID: userID,
		Items:  c.Items(),
		Total:  c.Total(),
		Status: model.OrderPending,
		Date:   now.UTC(),
	}, nil
}

// NewOrderID returns an id of the form ORD-XXXXXXXXX.
func NewOrderID() string {
	u := uuid.New()
	var b strings.Builder
	b.WriteString("ORD-")
	for i := 0; i < 9; i++ {
		b.WriteByte(orderIDAlphabet[int(u[i])%len(orderIDAlphabet)])
	}
	return b.String()
}
