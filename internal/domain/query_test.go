package domain

import "testing"

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{name: "zero value", in: Page{}, want: Page{Number: 1, Size: DefaultPageSize}},
		{name: "negative", in: Page{Number: -3, Size: -1}, want: Page{Number: 1, Size: DefaultPageSize}},
		{name: "capped", in: Page{Number: 2, Size: 5000}, want: Page{Number: 2, Size: MaxPageSize}},
		{name: "kept", in: Page{Number: 3, Size: 7}, want: Page{Number: 3, Size: 7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	if got := Window(items, Page{Number: 2, Size: 2}); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("page 2 = %v", got)
	}
	if got := Window(items, Page{Number: 3, Size: 2}); len(got) != 1 || got[0] != 5 {
		t.Fatalf("page 3 = %v", got)
	}
	if got := Window(items, Page{Number: 9, Size: 2}); len(got) != 0 {
		t.Fatalf("page 9 = %v, want empty", got)
	}
}
