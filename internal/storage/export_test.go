package storage

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"storesight/internal/types"
)

func sampleProducts() []types.ProductRecord {
	shirt := types.NewProductRecord()
	shirt.Title = "Linen Shirt"
	shirt.Price = "$29.99"
	shirt.Rating = "4.7"
	shirt.Reviews = "12"

	mystery := types.NewProductRecord()
	mystery.Price = "£5.00"

	return []types.ProductRecord{shirt, mystery}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "products.json")

	if err := ExportJSON(path, sampleProducts()); err != nil {
		t.Fatalf("export error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var got []types.ProductRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Title != "Linen Shirt" {
		t.Errorf("title = %q", got[0].Title)
	}
	// Sentinels survive the round trip as real values.
	if got[1].Title != types.UnknownTitle {
		t.Errorf("sentinel title = %q", got[1].Title)
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	if err := ExportCSV(path, sampleProducts()); err != nil {
		t.Fatalf("export error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "title" || rows[0][1] != "price" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "Linen Shirt" || rows[1][1] != "$29.99" {
		t.Errorf("first row = %v", rows[1])
	}
}
