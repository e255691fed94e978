package domain

import (
	"time"

	"github.com/shopspring/decimal"

	warehouse "salesinsights/internal/warehouse/domain"
)

// FactParquet ligne de fait au format Parquet.
// Les mesures absentes sont des colonnes OPTIONAL (nil).
type FactParquet struct {
	ID              int64    `parquet:"name=id, type=INT64"`
	Date            string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerID      int32    `parquet:"name=customer_id, type=INT32"`
	PlantID         int32    `parquet:"name=plant_id, type=INT32"`
	MaterialID      int32    `parquet:"name=material_id, type=INT32"`
	NetQty          *float64 `parquet:"name=net_qty, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetSellingPrice *float64 `parquet:"name=net_selling_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	ConfirmedQty    *float64 `parquet:"name=confirmed_qty, type=DOUBLE, repetitiontype=OPTIONAL"`
	ConfirmedValue  *float64 `parquet:"name=confirmed_value, type=DOUBLE, repetitiontype=OPTIONAL"`
	BudgetQty       *float64 `parquet:"name=budget_qty, type=DOUBLE, repetitiontype=OPTIONAL"`
	BudgetValue     *float64 `parquet:"name=budget_value, type=DOUBLE, repetitiontype=OPTIONAL"`
	ForecastQty     *float64 `parquet:"name=forecast_qty, type=DOUBLE, repetitiontype=OPTIONAL"`
	ForecastValue   *float64 `parquet:"name=forecast_value, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// NewFactParquet convertit un fait
func NewFactParquet(f warehouse.FactSales) FactParquet {
	return FactParquet{
		ID:              int64(f.ID),
		Date:            f.Date.Format(time.DateOnly),
		CustomerID:      int32(f.CustomerID),
		PlantID:         int32(f.PlantID),
		MaterialID:      int32(f.MaterialID),
		NetQty:          optional(f.NetQty),
		NetSellingPrice: optional(f.NetSellingPrice),
		ConfirmedQty:    optional(f.ConfirmedQty),
		ConfirmedValue:  optional(f.ConfirmedValue),
		BudgetQty:       optional(f.BudgetQty),
		BudgetValue:     optional(f.BudgetValue),
		ForecastQty:     optional(f.ForecastQty),
		ForecastValue:   optional(f.ForecastValue),
	}
}

func optional(m decimal.NullDecimal) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Decimal.InexactFloat64()
	return &v
}
