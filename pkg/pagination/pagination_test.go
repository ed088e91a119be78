package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		in       Params
		wantPage int
		wantSize int
	}{
		{"defaults", Params{}, 1, DefaultSize},
		{"negative page", Params{Page: -3, Size: 10}, 1, 10},
		{"capped size", Params{Page: 2, Size: 5000}, 2, MaxSize},
		{"passthrough", Params{Page: 4, Size: 25}, 4, 25},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.wantPage || got.Size != tc.wantSize {
			t.Fatalf("%s: got page=%d size=%d, want page=%d size=%d", tc.name, got.Page, got.Size, tc.wantPage, tc.wantSize)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Size: 20}
	if got := p.Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
}

func TestPageFor(t *testing.T) {
	page := PageFor(Params{Page: 2, Size: 10}, 35)
	if page.TotalPages != 4 {
		t.Fatalf("expected 4 pages, got %d", page.TotalPages)
	}
	if page.TotalItems != 35 {
		t.Fatalf("expected total 35, got %d", page.TotalItems)
	}

	empty := PageFor(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("expected at least one page, got %d", empty.TotalPages)
	}
}
