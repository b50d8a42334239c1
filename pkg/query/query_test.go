package query

import (
	"math"
	"strconv"
	"testing"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
)

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.Product{
		{"code": "A1", "family_name": "Escritura", "category": "Lapices"},
		{"code": "A2", "family_name": "Escritura", "category": "Boligrafos"},
		{"code": "A3", "family_name": "Tecnologia", "category": "USB"},
		{"code": "A4", "family_name": "ESCRITURA", "category": "Lapices"},
		{"code": "A5", "family_name": "Textil"}, // no category
		{"code": "A6", "category": "Lapices"},   // no family
	})
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultPageSize},
		{"abc", DefaultPageSize},
		{"10", 10},
		{"0", 1},
		{"-5", 1},
		{"5000", MaxPageSize},
		{"1000", 1000},
	}

	for _, tt := range tests {
		if got := ParsePageSize(tt.raw); got != tt.want {
			t.Errorf("ParsePageSize(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePageNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"7", 7},
		{strconv.Itoa(math.MaxInt), math.MaxInt},
	}

	for _, tt := range tests {
		if got := ParsePageNumber(tt.raw); got != tt.want {
			t.Errorf("ParsePageNumber(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestRun_NoFilters(t *testing.T) {
	result := Run(testSnapshot(), Filters{}, "", "")

	if result.Total != 6 {
		t.Errorf("Total = %d, want 6", result.Total)
	}
	if len(result.Items) != 6 {
		t.Errorf("Items = %d, want 6", len(result.Items))
	}
	if result.PageSize != DefaultPageSize || result.PageNumber != 1 {
		t.Errorf("normalized pagination = (%d, %d), want (%d, 1)",
			result.PageSize, result.PageNumber, DefaultPageSize)
	}
}

func TestRun_FamilyFilterCaseInsensitive(t *testing.T) {
	result := Run(testSnapshot(), Filters{Family: "escritura"}, "", "")

	if result.Total != 3 {
		t.Fatalf("Total = %d, want 3 (Escritura x2 + ESCRITURA)", result.Total)
	}
	for _, p := range result.Items {
		if got := p.FamilyName(); got != "Escritura" && got != "ESCRITURA" {
			t.Errorf("unexpected family %q in filtered result", got)
		}
	}
}

func TestRun_MissingFieldExcludedUnderFilter(t *testing.T) {
	// A6 has no family_name and must be excluded by any family filter.
	result := Run(testSnapshot(), Filters{Family: "Textil"}, "", "")
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Total)
	}

	// A5 has no category and must be excluded by any category filter.
	result = Run(testSnapshot(), Filters{Category: "Lapices"}, "", "")
	for _, p := range result.Items {
		if p.Code() == "A5" {
			t.Error("product without the filtered field must be excluded")
		}
	}
}

func TestRun_FiltersComposeWithAND(t *testing.T) {
	both := Run(testSnapshot(), Filters{Family: "Escritura", Category: "Lapices"}, "", "")

	if both.Total != 2 {
		t.Fatalf("Total = %d, want 2 (A1, A4)", both.Total)
	}

	// AND composition: filtering by family then intersecting with the
	// category filter by hand gives the same set.
	family := Run(testSnapshot(), Filters{Family: "Escritura"}, "", "")
	manual := 0
	for _, p := range family.Items {
		if (Filters{Category: "Lapices"}).Match(p) {
			manual++
		}
	}
	if manual != both.Total {
		t.Errorf("sequential filtering found %d, combined found %d", manual, both.Total)
	}
}

func TestRun_TotalIndependentOfWindow(t *testing.T) {
	for page := 1; page <= 5; page++ {
		result := Run(testSnapshot(), Filters{}, "2", strconv.Itoa(page))
		if result.Total != 6 {
			t.Errorf("page %d: Total = %d, want 6", page, result.Total)
		}
	}
}

func TestRun_PagesAreContiguousAndComplete(t *testing.T) {
	snap := testSnapshot()

	// Concatenating all pages must reconstruct the filtered set exactly
	// once, in snapshot order.
	var reassembled []string
	for page := 1; ; page++ {
		result := Run(snap, Filters{}, "2", strconv.Itoa(page))
		if len(result.Items) == 0 {
			break
		}
		for _, p := range result.Items {
			reassembled = append(reassembled, p.Code())
		}
	}

	if len(reassembled) != snap.Len() {
		t.Fatalf("reassembled %d products, want %d", len(reassembled), snap.Len())
	}
	for i, code := range reassembled {
		if want := snap.Products[i].Code(); code != want {
			t.Errorf("position %d: got %s, want %s", i, code, want)
		}
	}
}

func TestRun_WindowPastEndIsEmpty(t *testing.T) {
	for _, page := range []string{"99", strconv.Itoa(math.MaxInt)} {
		result := Run(testSnapshot(), Filters{}, "1000", page)

		if len(result.Items) != 0 {
			t.Errorf("page %s: Items = %d, want empty page", page, len(result.Items))
		}
		if result.Total != 6 {
			t.Errorf("page %s: Total = %d, want 6", page, result.Total)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	snap := testSnapshot()
	a := Run(snap, Filters{Family: "Escritura"}, "2", "1")
	b := Run(snap, Filters{Family: "Escritura"}, "2", "1")

	if len(a.Items) != len(b.Items) {
		t.Fatalf("result sizes differ: %d vs %d", len(a.Items), len(b.Items))
	}
	for i := range a.Items {
		if a.Items[i].Code() != b.Items[i].Code() {
			t.Errorf("position %d differs between identical queries", i)
		}
	}
}
