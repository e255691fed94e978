package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FactSales représente une ligne de vente journalière
// (date, client, usine, article).
// Toutes les mesures sont nullables: une valeur absente n'est pas un zéro.
type FactSales struct {
	ID         FactID
	Date       time.Time
	CustomerID CustomerID
	PlantID    PlantID
	MaterialID MaterialID

	NetQty          decimal.NullDecimal
	NetSellingPrice decimal.NullDecimal
	ConfirmedQty    decimal.NullDecimal
	ConfirmedValue  decimal.NullDecimal
	BudgetQty       decimal.NullDecimal
	BudgetValue     decimal.NullDecimal
	ForecastQty     decimal.NullDecimal
	ForecastValue   decimal.NullDecimal
}

// Revenue retourne le chiffre d'affaires de la ligne:
// NetQty × NetSellingPrice si les deux sont présents, sinon ConfirmedValue, sinon 0.
func (f FactSales) Revenue() decimal.Decimal {
	if f.NetQty.Valid && f.NetSellingPrice.Valid {
		return f.NetQty.Decimal.Mul(f.NetSellingPrice.Decimal)
	}
	if f.ConfirmedValue.Valid {
		return f.ConfirmedValue.Decimal
	}
	return decimal.Zero
}

// Units retourne les unités vendues: NetQty, sinon ConfirmedQty, sinon 0
func (f FactSales) Units() decimal.Decimal {
	if f.NetQty.Valid {
		return f.NetQty.Decimal
	}
	if f.ConfirmedQty.Valid {
		return f.ConfirmedQty.Decimal
	}
	return decimal.Zero
}

// FactCSVHeaders retourne les en-têtes CSV des faits
func FactCSVHeaders() []string {
	return []string{
		"id", "date", "customer_id", "plant_id", "material_id",
		"net_qty", "net_selling_price", "confirmed_qty", "confirmed_value",
		"budget_qty", "budget_value", "forecast_qty", "forecast_value",
	}
}

// Record convertit le fait en ligne CSV.
// L'encodage est stable: deux générations identiques produisent les mêmes octets.
func (f FactSales) Record() []string {
	return []string{
		strconv.FormatInt(int64(f.ID), 10),
		f.Date.Format(time.DateOnly),
		strconv.Itoa(int(f.CustomerID)),
		strconv.Itoa(int(f.PlantID)),
		strconv.Itoa(int(f.MaterialID)),
		formatMeasure(f.NetQty, 3),
		formatMeasure(f.NetSellingPrice, 2),
		formatMeasure(f.ConfirmedQty, 3),
		formatMeasure(f.ConfirmedValue, 2),
		formatMeasure(f.BudgetQty, 3),
		formatMeasure(f.BudgetValue, 2),
		formatMeasure(f.ForecastQty, 3),
		formatMeasure(f.ForecastValue, 2),
	}
}

func formatMeasure(m decimal.NullDecimal, places int32) string {
	if !m.Valid {
		return ""
	}
	return m.Decimal.StringFixed(places)
}
