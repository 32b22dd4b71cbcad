package types

import (
	"encoding/json"
	"testing"
)

func TestNewProductRecordSentinels(t *testing.T) {
	rec := NewProductRecord()
	if rec.Title != UnknownTitle {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Price != NotAvailable || rec.Rating != NotAvailable || rec.Reviews != NotAvailable {
		t.Errorf("numeric-ish fields = %q/%q/%q", rec.Price, rec.Rating, rec.Reviews)
	}
	if rec.Availability != UnknownAvailability {
		t.Errorf("availability = %q", rec.Availability)
	}
}

func TestMeaningful(t *testing.T) {
	rec := NewProductRecord()
	if rec.Meaningful() {
		t.Error("all-sentinel record must not be meaningful")
	}

	withTitle := NewProductRecord()
	withTitle.Title = "Linen Shirt"
	if !withTitle.Meaningful() {
		t.Error("a titled record is meaningful")
	}

	withPrice := NewProductRecord()
	withPrice.Price = "$5.00"
	if !withPrice.Meaningful() {
		t.Error("a priced record is meaningful")
	}
}

func TestProductRecordWireShape(t *testing.T) {
	rec := NewProductRecord()
	rec.Title = "Linen Shirt"
	rec.SetExtra("platform", "shopify")

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	// All five fields are always present; Extra never leaks.
	for _, key := range []string{"title", "price", "availability", "rating", "reviews"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if _, ok := m["platform"]; ok {
		t.Error("extra fields must not appear on the wire")
	}
	if len(m) != 5 {
		t.Errorf("wire shape has %d fields, want 5", len(m))
	}
}
