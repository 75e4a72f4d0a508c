// Package listing holds the search and pagination shared by the table
// views.
package listing

import "strings"

// Filter returns the items for which any accessor's value contains term,
// case-insensitively. A blank term returns items unchanged.
func Filter[T any](items []T, term string, fields ...func(T) string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Page is one page of a list. Number is 1-based; Count is at least 1.
type Page[T any] struct {
	Items  []T
	Number int
	Count  int
	Total  int
}

// Paginate cuts items into pages of perPage and returns page n, clamped
// to the valid range.
func Paginate[T any](items []T, n, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 1
	}
	count := (len(items) + perPage - 1) / perPage
	if count < 1 {
		count = 1
	}
	n = max(1, min(n, count))
	start := (n - 1) * perPage
	end := min(start+perPage, len(items))
	return Page[T]{
		Items:  items[start:end],
		Number: n,
		Count:  count,
		Total:  len(items),
	}
}

// Offset returns the index in the full list of the page's first item.
func (p Page[T]) Offset(perPage int) int {
	return (p.Number - 1) * perPage
}

// Cursor tracks a search term and a page number. Changing the term goes
// back to page 1.
type Cursor struct {
	Term string
	Page int
}

// SetTerm updates the search term and resets to the first page when it
// changed. It reports whether the term changed.
func (c *Cursor) SetTerm(term string) bool {
	if term == c.Term {
		return false
	}
	c.Term = term
	c.Page = 1
	return true
}

// Next and Prev move the page within [1, count].
func (c *Cursor) Next(count int) {
	if c.Page < count {
		c.Page++
	}
}

func (c *Cursor) Prev() {
	if c.Page > 1 {
		c.Page--
	}
}
