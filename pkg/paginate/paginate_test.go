package paginate

import (
	"reflect"
	"testing"
)

func TestPaginateScenarios(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		size       int
		maxPages   int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantPages  []int
		wantTotalP int
	}{
		{"first page of three", 25, 1, 10, 999, 1, 0, 9, []int{1, 2, 3}, 3},
		{"last partial page", 25, 3, 10, 999, 3, 20, 24, []int{1, 2, 3}, 3},
		{"single short page", 5, 1, 10, 999, 1, 0, 4, []int{1}, 1},
		{"page below range clamps to 1", 25, -4, 10, 999, 1, 0, 9, []int{1, 2, 3}, 3},
		{"page above range clamps to last", 25, 99, 10, 999, 3, 20, 24, []int{1, 2, 3}, 3},
		{"window near start", 100, 2, 10, 5, 2, 10, 19, []int{1, 2, 3, 4, 5}, 10},
		{"window near end", 100, 9, 10, 5, 9, 80, 89, []int{6, 7, 8, 9, 10}, 10},
		{"window centered odd", 100, 5, 10, 5, 5, 40, 49, []int{3, 4, 5, 6, 7}, 10},
		{"window centered even", 100, 5, 10, 4, 5, 40, 49, []int{3, 4, 5, 6}, 10},
		{"exact multiple", 20, 2, 10, 999, 2, 10, 19, []int{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Paginate(tt.total, tt.page, tt.size, tt.maxPages)
			if r.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage: expected %d, got %d", tt.wantPage, r.CurrentPage)
			}
			if r.StartIndex != tt.wantStart || r.EndIndex != tt.wantEnd {
				t.Errorf("range: expected %d..%d, got %d..%d", tt.wantStart, tt.wantEnd, r.StartIndex, r.EndIndex)
			}
			if !reflect.DeepEqual(r.Pages, tt.wantPages) {
				t.Errorf("Pages: expected %v, got %v", tt.wantPages, r.Pages)
			}
			if r.TotalPages != tt.wantTotalP {
				t.Errorf("TotalPages: expected %d, got %d", tt.wantTotalP, r.TotalPages)
			}
		})
	}
}

func TestPaginateZeroItemsIsOneEmptyPage(t *testing.T) {
	for _, page := range []int{-1, 0, 1, 7} {
		r := Paginate(0, page, 10, 5)
		if !r.Empty {
			t.Fatalf("page %d: expected Empty result", page)
		}
		if r.CurrentPage != 1 || r.TotalPages != 1 {
			t.Errorf("page %d: expected page 1 of 1, got %d of %d", page, r.CurrentPage, r.TotalPages)
		}
		if r.Count() != 0 || r.Contains(0) {
			t.Errorf("page %d: empty result should not contain items", page)
		}
		if !reflect.DeepEqual(r.Pages, []int{1}) {
			t.Errorf("page %d: expected pages [1], got %v", page, r.Pages)
		}
	}
}

func TestPaginateNormalizesSizes(t *testing.T) {
	r := Paginate(3, 2, 0, 0)
	if r.PageSize != 1 || r.TotalPages != 3 {
		t.Fatalf("expected page size 1 and 3 pages, got size %d pages %d", r.PageSize, r.TotalPages)
	}
	if r.StartIndex != 1 || r.EndIndex != 1 {
		t.Errorf("expected range 1..1, got %d..%d", r.StartIndex, r.EndIndex)
	}
	if len(r.Pages) != 1 || r.Pages[0] != 2 {
		t.Errorf("expected single centered button [2], got %v", r.Pages)
	}
}

// Pages partition the item range with no gaps or overlaps.
func TestPaginatePartitionsItems(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for size := 1; size <= 12; size++ {
			first := Paginate(total, 1, size, 999)
			next := 0
			sum := 0
			for p := 1; p <= first.TotalPages; p++ {
				r := Paginate(total, p, size, 999)
				if r.StartIndex != next {
					t.Fatalf("total=%d size=%d page=%d: gap or overlap, start %d want %d", total, size, p, r.StartIndex, next)
				}
				next = r.EndIndex + 1
				sum += r.Count()
			}
			if sum != total {
				t.Fatalf("total=%d size=%d: page counts sum to %d", total, size, sum)
			}
		}
	}
}

func TestPaginateClampAndWindowProperties(t *testing.T) {
	for total := 1; total <= 80; total += 3 {
		for size := 1; size <= 9; size += 2 {
			for maxPages := 1; maxPages <= 8; maxPages++ {
				for page := -3; page <= 30; page++ {
					r := Paginate(total, page, size, maxPages)
					if r.CurrentPage < 1 || r.CurrentPage > r.TotalPages {
						t.Fatalf("clamped page %d outside [1,%d]", r.CurrentPage, r.TotalPages)
					}
					wantLen := min(maxPages, r.TotalPages)
					if len(r.Pages) != wantLen {
						t.Fatalf("total=%d size=%d max=%d page=%d: window length %d, want %d", total, size, maxPages, page, len(r.Pages), wantLen)
					}
					found := false
					for i, p := range r.Pages {
						if i > 0 && p != r.Pages[i-1]+1 {
							t.Fatalf("window not contiguous: %v", r.Pages)
						}
						if p == r.CurrentPage {
							found = true
						}
					}
					if !found {
						t.Fatalf("window %v does not contain current page %d", r.Pages, r.CurrentPage)
					}
				}
			}
		}
	}
}

func TestPageOf(t *testing.T) {
	tests := []struct {
		index, size, want int
	}{
		{0, 7, 1},
		{6, 7, 1},
		{7, 7, 2},
		{19, 20, 1},
		{20, 20, 2},
		{-1, 7, 1},
		{3, 0, 4},
	}
	for _, tt := range tests {
		if got := PageOf(tt.index, tt.size); got != tt.want {
			t.Errorf("PageOf(%d, %d): expected %d, got %d", tt.index, tt.size, tt.want, got)
		}
	}
}
