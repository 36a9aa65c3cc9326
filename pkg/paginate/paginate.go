// Package paginate computes windowed pagination for ordered result lists.
//
// Paginate is a pure function: given the number of items, the requested page,
// the page size and how many page buttons fit on screen, it returns the clamped
// page, the inclusive item index range visible on that page and the page
// numbers to render as navigation buttons.
//
// A list with zero items is treated as a single empty page so callers never
// see a zero or negative page number.
package paginate

// Result describes one page of a paginated list.
type Result struct {
	TotalItems  int
	CurrentPage int
	PageSize    int
	TotalPages  int
	StartPage   int
	EndPage     int
	// StartIndex and EndIndex are zero-based and inclusive. EndIndex is -1
	// when the list is empty.
	StartIndex int
	EndIndex   int
	Pages      []int
	Empty      bool
}

// Paginate returns the page window and visible item range for a list of
// totalItems items. currentPage is clamped to [1, TotalPages]; pageSize and
// maxPages below 1 are treated as 1.
func Paginate(totalItems, currentPage, pageSize, maxPages int) Result {
	if pageSize < 1 {
		pageSize = 1
	}
	if maxPages < 1 {
		maxPages = 1
	}
	if totalItems <= 0 {
		return Result{
			TotalItems:  0,
			CurrentPage: 1,
			PageSize:    pageSize,
			TotalPages:  1,
			StartPage:   1,
			EndPage:     1,
			StartIndex:  0,
			EndIndex:    -1,
			Pages:       []int{1},
			Empty:       true,
		}
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	if currentPage < 1 {
		currentPage = 1
	} else if currentPage > totalPages {
		currentPage = totalPages
	}

	var startPage, endPage int
	if totalPages <= maxPages {
		startPage = 1
		endPage = totalPages
	} else {
		before := maxPages / 2
		after := (maxPages+1)/2 - 1
		switch {
		case currentPage <= before:
			startPage = 1
			endPage = maxPages
		case currentPage+after >= totalPages:
			startPage = totalPages - maxPages + 1
			endPage = totalPages
		default:
			startPage = currentPage - before
			endPage = currentPage + after
		}
	}

	startIndex := (currentPage - 1) * pageSize
	endIndex := min(startIndex+pageSize-1, totalItems-1)

	pages := make([]int, 0, endPage-startPage+1)
	for p := startPage; p <= endPage; p++ {
		pages = append(pages, p)
	}

	return Result{
		TotalItems:  totalItems,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		StartPage:   startPage,
		EndPage:     endPage,
		StartIndex:  startIndex,
		EndIndex:    endIndex,
		Pages:       pages,
	}
}

// Contains reports whether the item at index i is visible on this page.
func (r Result) Contains(i int) bool {
	return i >= r.StartIndex && i <= r.EndIndex
}

// Count returns the number of items visible on this page.
func (r Result) Count() int {
	if r.EndIndex < r.StartIndex {
		return 0
	}
	return r.EndIndex - r.StartIndex + 1
}

// HasPrev reports whether a page exists before the current one.
func (r Result) HasPrev() bool { return r.CurrentPage > 1 }

// HasNext reports whether a page exists after the current one.
func (r Result) HasNext() bool { return r.CurrentPage < r.TotalPages }

// PageOf returns the 1-based page holding the zero-based item index when
// pages hold pageSize items each. Negative indexes map to page 1.
func PageOf(index, pageSize int) int {
	if index < 0 {
		return 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return (index + pageSize) / pageSize
}
