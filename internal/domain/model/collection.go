package model

import "fmt"

// Collection names one persisted record set. Each key is stored and replaced
// independently of the others.
type Collection string

const (
	CollectionNews     Collection = "news"
	CollectionScores   Collection = "scores"
	CollectionProducts Collection = "products"
	CollectionOrders   Collection = "orders"
	CollectionUsers    Collection = "users"
)

// Collections returns every collection key in a stable order.
func Collections() []Collection {
	return []Collection{CollectionNews, CollectionScores, CollectionProducts, CollectionOrders, CollectionUsers}
}

// ParseCollection maps a raw key to a Collection.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", invalid("unknown collection %q", s)
}

// Replaceable reports whether the collection accepts whole-array replace.
// Orders only grow by prepend and users change through register/block.
func (c Collection) Replaceable() bool {
	switch c {
	case CollectionNews, CollectionScores, CollectionProducts:
		return true
	default:
		return false
	}
}

func (c Collection) String() string { return string(c) }

// ValidateIDs checks that every id is non-empty and unique.
func ValidateIDs[T any](records []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		key := id(r)
		if key == "" {
			return invalid("record %d has no id", i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrValidation, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}
