package entity

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want Category
		ok   bool
	}{
		{"cereals", CategoryCereals, true},
		{" Vegetables ", CategoryVegetables, true},
		{"FRUITS", CategoryFruits, true},
		{"dairy", "", false},
		{"", "", false},
		{"all", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseCategory(tc.raw)
		if ok != tc.ok {
			t.Errorf("ParseCategory(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCategoriesClosedSet(t *testing.T) {
	if len(Categories()) != 3 {
		t.Fatalf("category set changed size: %v", Categories())
	}
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("category %q not valid against its own set", c)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
		ok   bool
	}{
		{"Pending", StatusPending, true},
		{"packed", StatusPacked, true},
		{"DELIVERED", StatusDelivered, true},
		{"shipped", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseStatus(tc.raw)
		if ok != tc.ok {
			t.Errorf("ParseStatus(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
