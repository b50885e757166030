package main

import (
	"net/url"
	"strings"
)

// Values accepted by the borrowed filter.
const (
	FilterAvailable = "available"
	FilterBorrowed  = "borrowed"
)

// BookFilter holds the optional listing predicates. Empty fields
// impose no constraint and set fields are combined with AND.
type BookFilter struct {
	Borrowed string
	Category string
	Name     string
}

// NewBookFilterFromQuery builds a filter from url query parameters.
func NewBookFilterFromQuery(q url.Values) BookFilter {
	return BookFilter{
		Borrowed: q.Get("borrowed"),
		Category: q.Get("category"),
		Name:     q.Get("name"),
	}
}

// Query encodes the filter back into url query parameters, skipping empty ones.
func (f BookFilter) Query() url.Values {
	q := url.Values{}
	if f.Borrowed != "" {
		q.Set("borrowed", f.Borrowed)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	return q
}

// Match reports whether the book satisfies every set predicate. Category
// and name use case-insensitive exact comparison. An unknown borrowed
// value matches everything.
func (f BookFilter) Match(b Book) bool {
	switch f.Borrowed {
	case FilterAvailable:
		if b.Borrowed {
			return false
		}
	case FilterBorrowed:
		if !b.Borrowed {
			return false
		}
	}

	if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
		return false
	}

	if f.Name != "" && !strings.EqualFold(b.Name, f.Name) {
		return false
	}

	return true
}

// FilterBooks returns the matching books in catalog order, each one
// tagged with its original position and overdue status against today.
func FilterBooks(books []Book, f BookFilter, today string) []BookEntry {
	entries := []BookEntry{}
	for i, b := range books {
		if !f.Match(b) {
			continue
		}
		entries = append(entries, BookEntry{ID: i, Overdue: IsOverdue(b, today), Book: b})
	}
	return entries
}
