package page

import "testing"

func TestNew_CeilingDivision(t *testing.T) {
	tests := []struct {
		name           string
		total, perPage int
		wantPages      int
	}{
		{"exact multiple", 20, 10, 2},
		{"remainder", 25, 10, 3},
		{"single partial", 1, 10, 1},
		{"empty", 0, 10, 0},
		{"per page one", 7, 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(1, tt.perPage, tt.total)
			if p.TotalPages() != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", p.TotalPages(), tt.wantPages)
			}
		})
	}
}

func TestNew_ClampsCurrentPage(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		total, perPage int
		wantCurrent    int
	}{
		{"past the end", 5, 25, 10, 3},
		{"last page", 3, 25, 10, 3},
		{"first page", 1, 25, 10, 1},
		{"zero", 0, 25, 10, 1},
		{"negative", -2, 25, 10, 1},
		{"no results stays at one", 9, 0, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.perPage, tt.total)
			if p.CurrentPage() != tt.wantCurrent {
				t.Errorf("CurrentPage() = %d, want %d", p.CurrentPage(), tt.wantCurrent)
			}
		})
	}
}

func TestNew_EmptyResults(t *testing.T) {
	p := New(1, 10, 0)
	if p.TotalPages() != 0 {
		t.Errorf("TotalPages() = %d, want 0", p.TotalPages())
	}
	if p.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d, want 1", p.CurrentPage())
	}
	start, end := p.Window()
	if start != 0 || end != 0 {
		t.Errorf("Window() = [%d, %d), want [0, 0)", start, end)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		total, perPage int
		wantStart      int
		wantEnd        int
	}{
		{"first full page", 1, 25, 10, 0, 10},
		{"middle page", 2, 25, 10, 10, 20},
		{"short last page", 3, 25, 10, 20, 25},
		{"clamped past end", 7, 25, 10, 20, 25},
		{"single page", 1, 4, 10, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.perPage, tt.total)
			start, end := p.Window()
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Window() = [%d, %d), want [%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
