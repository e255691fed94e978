package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	warehouse "salesinsights/internal/warehouse/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ExportFormat
		err  bool
	}{
		{"csv", ExportFormatCSV, false},
		{" Parquet ", ExportFormatParquet, false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("ParseFormat(%q) err = %v, want ErrInvalidFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("/exports/", "run-1", "/tmp/out/fact_sales.csv"); got != "exports/run-1/fact_sales.csv" {
		t.Errorf("ObjectKey = %q", got)
	}
	if got := ObjectKey("", "run-1", "fact_sales.parquet"); got != "run-1/fact_sales.parquet" {
		t.Errorf("ObjectKey sans préfixe = %q", got)
	}
}

func TestNewFactParquet_OptionalMeasures(t *testing.T) {
	f := warehouse.FactSales{
		ID:              7,
		Date:            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:      2,
		PlantID:         3,
		MaterialID:      4,
		NetQty:          decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
		NetSellingPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.2")),
	}

	row := NewFactParquet(f)
	if row.ID != 7 || row.Date != "2025-03-01" || row.MaterialID != 4 {
		t.Errorf("row = %+v", row)
	}
	if row.NetQty == nil || *row.NetQty != 12.5 {
		t.Errorf("NetQty = %v, want 12.5", row.NetQty)
	}
	if row.ForecastValue != nil || row.ConfirmedValue != nil {
		t.Error("mesures absentes attendues nil")
	}
}

func BenchmarkNewFactParquet(b *testing.B) {
	f := warehouse.FactSales{
		ID:             1,
		Date:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		NetQty:         decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
		ConfirmedValue: decimal.NewNullDecimal(decimal.RequireFromString("40.00")),
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = NewFactParquet(f)
	}
}
