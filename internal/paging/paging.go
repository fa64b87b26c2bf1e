// Package paging computes offset/limit page navigation.
package paging

// Page is a window over Total rows. Limit <= 0 is treated as 1.
type Page struct {
	Limit  int
	Offset int
	Total  int
}

func (p Page) limit() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Limit
}

// Current is 1-based: offset/limit + 1.
func (p Page) Current() int {
	return p.Offset/p.limit() + 1
}

// TotalPages is ceil(total/limit); zero rows is zero pages.
func (p Page) TotalPages() int {
	if p.Total <= 0 {
		return 0
	}
	l := p.limit()
	return (p.Total + l - 1) / l
}

func (p Page) HasPrev() bool { return p.Offset > 0 }

func (p Page) HasNext() bool { return p.Current() < p.TotalPages() }

func (p Page) FirstOffset() int { return 0 }

func (p Page) PrevOffset() int {
	off := p.Offset - p.limit()
	if off < 0 {
		return 0
	}
	return off
}

// NextOffset clamps to the current offset when there is no next page.
func (p Page) NextOffset() int {
	if !p.HasNext() {
		return p.Offset
	}
	return p.Offset + p.limit()
}

// LastOffset is (totalPages-1)*limit.
func (p Page) LastOffset() int {
	n := p.TotalPages()
	if n == 0 {
		return 0
	}
	return (n - 1) * p.limit()
}
