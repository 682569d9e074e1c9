package model

import "slices"

// Cloner is implemented by records that can copy themselves without sharing
// any slice or pointer with the original.
type Cloner[T any] interface {
	Clone() T
}

// CloneAll deep-copies records. A nil input stays nil.
func CloneAll[T Cloner[T]](records []T) []T {
	if records == nil {
		return nil
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns a copy of m with its own stats and minute.
func (m Match) Clone() Match {
	if m.Stats != nil {
		st := *m.Stats
		m.Stats = &st
	}
	if m.CurrentMinute != nil {
		minute := *m.CurrentMinute
		m.CurrentMinute = &minute
	}
	return m
}

// Clone returns a copy of a with its own tags and comments.
func (a Article) Clone() Article {
	a.Tags = slices.Clone(a.Tags)
	a.Comments = slices.Clone(a.Comments)
	return a
}

// Clone returns a copy of o with its own item lines.
func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (p Product) Clone() Product { return p }

func (u User) Clone() User { return u }
