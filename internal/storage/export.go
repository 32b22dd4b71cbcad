package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storesight/internal/types"
)

var csvHeaders = []string{"title", "price", "availability", "rating", "reviews"}

// ExportJSON writes products as an indented JSON array.
func ExportJSON(path string, products []types.ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// ExportCSV writes products as CSV rows with a fixed header.
func ExportCSV(path string, products []types.ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, p := range products {
		row := []string{p.Title, p.Price, p.Availability, p.Rating, p.Reviews}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
