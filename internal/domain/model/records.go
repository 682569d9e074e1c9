package model

import (
	"strings"
	"time"
)

// Comment is a reader comment attached to an article.
type Comment struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Date     time.Time `json:"date"`
}

// Article is an editorial news entry.
type Article struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Image    string    `json:"image,omitempty"`
	Category string    `json:"category,omitempty"`
	Author   string    `json:"author,omitempty"`
	Date     time.Time `json:"date,omitzero"`
	ReadTime string    `json:"readTime,omitempty"`
	Tags     []string  `json:"tags"`
	Comments []Comment `json:"comments"`
}

// Validate checks the fields an editor must provide.
func (a Article) Validate() error {
	switch {
	case a.ID == "":
		return invalid("article id is required")
	case strings.TrimSpace(a.Title) == "":
		return invalid("article %s: title is required", a.ID)
	case strings.TrimSpace(a.Content) == "":
		return invalid("article %s: content is required", a.ID)
	}
	return nil
}

// Product is a catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
	Stock       int     `json:"stock"`
}

// Validate checks catalog invariants.
func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return invalid("product id is required")
	case strings.TrimSpace(p.Name) == "":
		return invalid("product %s: name is required", p.ID)
	case p.Price < 0:
		return invalid("product %s: price must not be negative", p.ID)
	case p.Stock < 0:
		return invalid("product %s: stock must not be negative", p.ID)
	}
	return nil
}

// CartItem is a product line with a quantity. It flattens into the product's
// JSON fields plus "quantity".
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
)

// Order is a placed checkout.
type Order struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	Items  []CartItem  `json:"items"`
	Total  float64     `json:"total"`
	Status OrderStatus `json:"status"`
	Date   time.Time   `json:"date"`
}

// Validate checks that an order can be placed.
func (o Order) Validate() error {
	switch {
	case o.ID == "":
		return invalid("order id is required")
	case o.UserID == "":
		return invalid("order %s: user id is required", o.ID)
	case len(o.Items) == 0:
		return invalid("order %s: at least one item is required", o.ID)
	case o.Total < 0:
		return invalid("order %s: total must not be negative", o.ID)
	}
	switch o.Status {
	case OrderPending, OrderShipped, OrderDelivered:
	default:
		return invalid("order %s: unknown status %q", o.ID, o.Status)
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return invalid("order %s: item %s has no quantity", o.ID, it.ID)
		}
	}
	return nil
}

// Role is the only authorization signal the storefront carries.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a storefront account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks registration input.
func (u User) Validate() error {
	switch {
	case u.ID == "":
		return invalid("user id is required")
	case strings.TrimSpace(u.Username) == "":
		return invalid("user %s: username is required", u.ID)
	case !strings.Contains(u.Email, "@"):
		return invalid("user %s: a valid email is required", u.ID)
	case u.Role != RoleAdmin && u.Role != RoleUser:
		return invalid("user %s: unknown role %q", u.ID, u.Role)
	}
	return nil
}

// BlockRequest toggles a user's blocked flag.
type BlockRequest struct {
	UserID    string `json:"userId"`
	IsBlocked bool   `json:"isBlocked"`
}
