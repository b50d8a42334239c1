package catalog

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProduct_Code(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "code field",
			product: Product{"code": "P1234"},
			want:    "P1234",
		},
		{
			name:    "sku fallback",
			product: Product{"sku": "S5678"},
			want:    "S5678",
		},
		{
			name:    "code wins over sku",
			product: Product{"code": "P1234", "sku": "S5678"},
			want:    "P1234",
		},
		{
			name:    "missing",
			product: Product{"name": "algo"},
			want:    "",
		},
		{
			name:    "non-string code",
			product: Product{"code": 42},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.Code(); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProduct_FieldAccessors(t *testing.T) {
	p := Product{
		"code":        "P0001",
		"family_name": "Escritura",
		"category":    "Lapices",
	}

	if got := p.FamilyName(); got != "Escritura" {
		t.Errorf("FamilyName() = %q, want Escritura", got)
	}
	if got := p.Category(); got != "Lapices" {
		t.Errorf("Category() = %q, want Lapices", got)
	}
}

func TestProduct_PassThrough(t *testing.T) {
	// Unknown upstream fields must survive a JSON round trip untouched.
	raw := `{"code":"P1","family_name":"Textil","price":{"amount":12.5},"tags":["a","b"]}`

	var p Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got, want map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("Unmarshal round trip failed: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("Unmarshal want failed: %v", err)
	}

	if len(got) != len(want) {
		t.Errorf("round trip dropped fields: got %d, want %d", len(got), len(want))
	}
	if got["price"] == nil || got["tags"] == nil {
		t.Error("nested fields lost in round trip")
	}
}

func TestSnapshot_FindByCode(t *testing.T) {
	snap := NewSnapshot([]Product{
		{"code": "A1"},
		{"code": "B2"},
		{"sku": "C3"},
	})

	if p := snap.FindByCode("B2"); p == nil || p.Code() != "B2" {
		t.Errorf("FindByCode(B2) = %v", p)
	}
	if p := snap.FindByCode("C3"); p == nil || p.Code() != "C3" {
		t.Errorf("FindByCode(C3) = %v", p)
	}
	if p := snap.FindByCode("missing"); p != nil {
		t.Errorf("FindByCode(missing) = %v, want nil", p)
	}
}

func TestSnapshot_Age(t *testing.T) {
	snap := &Snapshot{FetchedAt: time.Now().Add(-1 * time.Hour)}
	if age := snap.Age(); age < time.Hour {
		t.Errorf("Age() = %v, want >= 1h", age)
	}
}
