// Package pagination windows an ordered, counted result set into fixed-size
// pages. Out-of-range requests are clamped rather than rejected: a missing or
// malformed page number selects the first page and a number past the end
// selects the last one.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// PostsPerPage is the page size used by every post listing.
const PostsPerPage = 10

// Meta describes one page of a listing.
type Meta struct {
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	Count    int64 `json:"count"`
	PerPage  int   `json:"per_page"`
}

// Offset is the number of items before this page.
func (m Meta) Offset() int {
	return (m.Number - 1) * m.PerPage
}

// Limit is the maximum number of items on this page.
func (m Meta) Limit() int {
	return m.PerPage
}

func (m Meta) HasNext() bool     { return m.Number < m.NumPages }
func (m Meta) HasPrevious() bool { return m.Number > 1 }
func (m Meta) HasOtherPages() bool {
	return m.HasNext() || m.HasPrevious()
}

func (m Meta) NextPageNumber() int {
	if !m.HasNext() {
		return m.Number
	}
	return m.Number + 1
}

func (m Meta) PreviousPageNumber() int {
	if !m.HasPrevious() {
		return m.Number
	}
	return m.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 if empty.
func (m Meta) StartIndex() int64 {
	if m.Count == 0 {
		return 0
	}
	return int64(m.Offset()) + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (m Meta) EndIndex() int64 {
	end := int64(m.Offset() + m.PerPage)
	if end > m.Count {
		return m.Count
	}
	return end
}

// PageRange lists every page number, for rendering the page links.
func (m Meta) PageRange() []int {
	out := make([]int, m.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Paginator computes page windows for a fixed page size.
type Paginator struct {
	perPage int
}

// New returns a Paginator with perPage items per page; values below 1 fall
// back to PostsPerPage.
func New(perPage int) Paginator {
	if perPage < 1 {
		perPage = PostsPerPage
	}
	return Paginator{perPage: perPage}
}

// PerPage returns the page size.
func (p Paginator) PerPage() int {
	return p.perPage
}

// NumPages is the number of pages for total items; an empty set still has one page.
func (p Paginator) NumPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(p.perPage) - 1) / int64(p.perPage))
}

// Page resolves rawPage (the unparsed ?page= value) against total items.
func (p Paginator) Page(total int64, rawPage string) Meta {
	if total < 0 {
		total = 0
	}
	numPages := p.NumPages(total)
	number := ParseNumber(rawPage)
	if number > numPages {
		number = numPages
	}
	return Meta{
		Number:   number,
		NumPages: numPages,
		Count:    total,
		PerPage:  p.perPage,
	}
}

const maxNumber = int(^uint(0) >> 1)

// ParseNumber parses a requested page number. Anything that is not a
// positive integer yields 1. The literal "last" and positive numbers too
// large for an int yield a number past any real page so Page clamps them to
// the final page.
func ParseNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "last" {
		return maxNumber
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return maxNumber
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Page is a window of items plus its metadata.
type Page[T any] struct {
	Meta
	Items []T `json:"items"`
}

// NewPage binds items to meta.
func NewPage[T any](items []T, meta Meta) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Meta: meta, Items: items}
}

// Len is the number of items on the page.
func (p Page[T]) Len() int {
	return len(p.Items)
}
