// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination slices a counted result set into fixed-size,
// 1-indexed pages.
package pagination

import "strconv"

// Page sizes used by the listings.
const (
	PublicPageSize = 6
	AuthorPageSize = 10
)

// Page describes one page of a result set. The number is always within
// [1, TotalPages] and TotalPages is at least 1.
type Page struct {
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// New resolves the requested page number against the total. A missing or
// non-numeric request yields page 1, numbers below 1 clamp to 1 and numbers
// past the end clamp to the last page.
func New(totalItems, size int, requested string) Page {
	if size < 1 {
		size = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	pages := (totalItems + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	n, err := strconv.Atoi(requested)
	switch {
	case err != nil, n < 1:
		n = 1
	case n > pages:
		n = pages
	}

	return Page{Number: n, Size: size, TotalItems: totalItems, TotalPages: pages}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Limit is the maximum number of rows on the page.
func (p Page) Limit() int { return p.Size }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }
func (p Page) HasPrev() bool { return p.Number > 1 }

// Next returns the following page number, or the current one on the last page.
func (p Page) Next() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// Prev returns the preceding page number, or 1 on the first page.
func (p Page) Prev() int {
	if p.HasPrev() {
		return p.Number - 1
	}
	return 1
}

// Numbers lists every page number, for rendering page links.
func (p Page) Numbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// IsMultiple reports whether there is more than one page to navigate.
func (p Page) IsMultiple() bool { return p.TotalPages > 1 }
