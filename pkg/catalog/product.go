// Package catalog provides the product catalog data model and the
// stale-while-revalidate snapshot cache that backs the proxy.
package catalog

import "time"

// Product is a single upstream catalog record. The upstream schema is not
// ours to validate: every field is passed through untouched, and only the
// handful of fields the proxy itself needs are given typed accessors.
type Product map[string]any

// stringField returns the named field as a string, or "" when the field is
// absent or not a string.
func (p Product) stringField(name string) string {
	v, ok := p[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Code returns the product's stable identifier. The upstream uses either
// "sku" or "code" depending on the endpoint version; "code" wins when both
// are present.
func (p Product) Code() string {
	if code := p.stringField("code"); code != "" {
		return code
	}
	return p.stringField("sku")
}

// FamilyName returns the product family, or "" when absent.
func (p Product) FamilyName() string {
	return p.stringField("family_name")
}

// Category returns the product category, or "" when absent.
func (p Product) Category() string {
	return p.stringField("category")
}

// Snapshot is a full copy of the upstream catalog at a point in time.
// A Snapshot is immutable once constructed: refreshes replace the whole
// snapshot, they never mutate one in place.
type Snapshot struct {
	Products  []Product
	FetchedAt time.Time
}

// NewSnapshot constructs a snapshot fetched now.
func NewSnapshot(products []Product) *Snapshot {
	return &Snapshot{
		Products:  products,
		FetchedAt: time.Now(),
	}
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.FetchedAt)
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Products)
}

// FindByCode returns the first product whose Code matches code, or nil.
// Matching is exact; upstream identifiers are case-sensitive.
func (s *Snapshot) FindByCode(code string) Product {
	for _, p := range s.Products {
		if p.Code() == code {
			return p
		}
	}
	return nil
}
