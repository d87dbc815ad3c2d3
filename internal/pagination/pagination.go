// Package pagination computes the page-button window of the board listing.
package pagination

// WindowSize is the number of page buttons shown at once.
const WindowSize = 5

// Pager describes the navigation controls for one listing page.
type Pager struct {
	Current int
	Total   int
	Pages   []int
	HasPrev bool
	HasNext bool
}

// Window returns the page numbers to show around current: up to two pages on
// either side, shifted so that a full window is shown whenever total allows.
func Window(current, total int) []int {
	if total <= 0 {
		return nil
	}
	start := max(1, current-2)
	end := min(total, max(start+WindowSize-1, min(total, current+2)))
	start = max(1, end-WindowSize+1)

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// New builds the pager for current out of total pages.
func New(current, total int) Pager {
	return Pager{
		Current: current,
		Total:   total,
		Pages:   Window(current, total),
		HasPrev: current > 1,
		HasNext: current < total,
	}
}

// Prev is the page the "previous" control loads.
func (p Pager) Prev() int { return p.Current - 1 }

// Next is the page the "next" control loads.
func (p Pager) Next() int { return p.Current + 1 }
